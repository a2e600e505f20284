package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/suite"

	database "caltext/app/db"
	"caltext/internal/api/estimator"
	"caltext/internal/api/tracker"
	"caltext/internal/models"
	api "caltext/internal/router"
)

// canned estimates keyed by description, standing in for the model.
type cannedEstimator struct {
	estimates   map[string]*models.Estimate
	corrections map[string]*models.CorrectedEstimate
}

var _ estimator.Service = (*cannedEstimator)(nil)

func (c *cannedEstimator) Estimate(_ context.Context, description string) (*models.Estimate, error) {
	if est, ok := c.estimates[description]; ok {
		return est, nil
	}
	return nil, &models.EstimationError{Reason: "malformed model output"}
}

func (c *cannedEstimator) EstimateCorrection(_ context.Context, _, instruction string) (*models.CorrectedEstimate, error) {
	if ce, ok := c.corrections[instruction]; ok {
		return ce, nil
	}
	return nil, &models.EstimationError{Reason: "malformed model output"}
}

// E2ETestSuite drives the full stack over HTTP: router, middleware,
// webhook handler, tracker service and a real SQLite store. Only the
// model call is canned.
type E2ETestSuite struct {
	suite.Suite
	server *httptest.Server
	client *http.Client
}

func (s *E2ETestSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.Init(filepath.Join(s.T().TempDir(), "e2e.db"), logger)
	s.Require().NoError(err)
	s.T().Cleanup(func() { db.Close() })

	store := tracker.NewSQLiteStore(db, time.UTC, logger)
	est := &cannedEstimator{
		estimates: map[string]*models.Estimate{
			"two eggs and toast": {
				Items: []models.Item{
					{Label: "Eggs", Calories: 180},
					{Label: "Toast", Calories: 200},
				},
				Total: 380,
			},
			"chicken salad": {
				Items: []models.Item{{Label: "Chicken salad", Calories: 450}},
				Total: 450,
			},
			"pasta with meatballs": {
				Items: []models.Item{
					{Label: "Pasta", Calories: 400},
					{Label: "Meatballs", Calories: 300},
				},
				Total: 700,
			},
		},
		corrections: map[string]*models.CorrectedEstimate{
			"it was one egg not two": {
				Estimate: models.Estimate{
					Items: []models.Item{
						{Label: "Egg", Calories: 90},
						{Label: "Toast", Calories: 200},
					},
					Total: 290,
				},
				Description: "one egg and toast",
			},
		},
	}

	service := tracker.NewService(store, est, 2600, time.UTC, logger)
	handler := tracker.NewWebhookHandler(service, logger)

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Mount("/", api.SetupRouter(&api.Config{WebhookHandler: handler}))

	s.server = httptest.NewServer(mux)
	s.T().Cleanup(s.server.Close)
	s.client = &http.Client{Timeout: 10 * time.Second}
}

func (s *E2ETestSuite) sendSMS(text string) (string, int) {
	form := url.Values{}
	form.Set("Body", text)
	form.Set("From", "+15550001111")

	resp, err := s.client.Post(s.server.URL+"/webhook/sms",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	s.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return string(body), resp.StatusCode
}

func (s *E2ETestSuite) sendShortcut(food string) (string, int) {
	payload := fmt.Sprintf(`{"food": %q}`, food)
	resp, err := s.client.Post(s.server.URL+"/webhook/sms",
		"application/json", strings.NewReader(payload))
	s.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return string(body), resp.StatusCode
}

func (s *E2ETestSuite) TestLogViaSMS() {
	body, code := s.sendSMS("two eggs and toast")

	s.Equal(http.StatusOK, code)
	s.Contains(body, "<Response><Message>")
	s.Contains(body, "Entry #1 logged: 380 cal")
	s.Contains(body, "Daily total: 380 / 2600")
	s.Contains(body, "Remaining: 2220")
}

func (s *E2ETestSuite) TestLogViaShortcut() {
	body, code := s.sendShortcut("two eggs and toast")

	s.Equal(http.StatusOK, code)
	s.NotContains(body, "<Response>")
	s.Contains(body, "Entry #1 logged: 380 cal")
	s.Contains(body, "Remaining: 2220")
}

func (s *E2ETestSuite) TestFullDayWorkflow() {
	body, _ := s.sendSMS("two eggs and toast")
	s.Contains(body, "Entry #1 logged: 380 cal")

	body, _ = s.sendSMS("chicken salad")
	s.Contains(body, "Entry #2 logged: 450 cal")
	s.Contains(body, "Daily total: 830 / 2600")

	body, _ = s.sendSMS("pasta with meatballs")
	s.Contains(body, "Entry #3 logged: 700 cal")
	s.Contains(body, "Daily total: 1530 / 2600")

	body, _ = s.sendSMS("summary")
	s.Contains(body, "Today&#39;s log:")
	s.Contains(body, "1. ")
	s.Contains(body, "two eggs and toast (380 cal)")
	s.Contains(body, "3. ")
	s.Contains(body, "Remaining: 1070")

	// Correct the first entry; its position and timestamp survive.
	body, _ = s.sendSMS("edit 1 it was one egg not two")
	s.Contains(body, "Entry #1 updated: one egg and toast, 290 cal")
	s.Contains(body, "Daily total: 1440 / 2600")

	// Delete the middle entry; the last one shifts up to #2.
	body, _ = s.sendSMS("delete 2")
	s.Contains(body, "Entry #2 deleted.")
	s.Contains(body, "Daily total: 990 / 2600")

	body, _ = s.sendSMS("summary")
	s.Contains(body, "1. ")
	s.Contains(body, "one egg and toast (290 cal)")
	s.Contains(body, "2. ")
	s.Contains(body, "pasta with meatballs (700 cal)")
	s.NotContains(body, "chicken salad")
}

func (s *E2ETestSuite) TestDeleteOutOfRange() {
	body, _ := s.sendSMS("two eggs and toast")
	s.Contains(body, "Entry #1 logged")

	body, code := s.sendSMS("delete 5")
	s.Equal(http.StatusOK, code)
	s.Contains(body, "Entry #5 not found. You have 1 entry today.")

	// Nothing was deleted.
	body, _ = s.sendSMS("summary")
	s.Contains(body, "two eggs and toast (380 cal)")
}

func (s *E2ETestSuite) TestEstimatorFailureLeavesLogUntouched() {
	body, code := s.sendSMS("something the model chokes on")
	s.Equal(http.StatusOK, code)
	s.Contains(body, "couldn&#39;t estimate calories")

	body, _ = s.sendSMS("summary")
	s.Contains(body, "Nothing logged today.")
}

func (s *E2ETestSuite) TestEmptyDaySummary() {
	body, code := s.sendSMS("summary")
	s.Equal(http.StatusOK, code)
	s.Contains(body, "Nothing logged today.")
	s.Contains(body, "Remaining: 2600")
}

func (s *E2ETestSuite) TestPing() {
	resp, err := s.client.Get(s.server.URL + "/ping")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func TestE2ETestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E tests in short mode")
	}
	suite.Run(t, new(E2ETestSuite))
}
