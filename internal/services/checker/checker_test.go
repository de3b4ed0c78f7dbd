package checker_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Houeta/stock-watch/internal/models"
	"github.com/Houeta/stock-watch/internal/repository"
	"github.com/Houeta/stock-watch/internal/services/checker"
	"github.com/Houeta/stock-watch/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fingerprint(t *testing.T, products []models.Product) string {
	t.Helper()

	hash, err := checker.CalculateHash(products)
	require.NoError(t, err)

	return hash
}

func TestParsePolicy(t *testing.T) {
	testCases := []struct {
		in      string
		want    checker.Policy
		wantErr bool
	}{
		{in: "", want: checker.PolicyAlways},
		{in: "always", want: checker.PolicyAlways},
		{in: "on_change", want: checker.PolicyOnChange},
		{in: "sometimes", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := checker.ParsePolicy(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, checker.ErrUnknownPolicy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestChecker_Evaluate(t *testing.T) {
	ctx := t.Context()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	checkedAt := time.Date(2026, time.October, 15, 15, 4, 0, 0, time.UTC)

	wakoOld := models.Product{
		Title: "Wako", URL: "u1", Status: models.InStock,
		Variants: []models.Variant{{Size: "40g", Price: "21.60"}},
	}
	wakoNew := models.Product{
		Title: "Wako", URL: "u1", Status: models.InStock,
		Variants: []models.Variant{{Size: "40g", Price: "21.60"}, {Size: "100g", Price: "48.00"}},
	}
	isuzu := models.Product{
		Title: "Isuzu", URL: "u2", Status: models.InStock,
		Variants: []models.Variant{{Size: "40g", Price: "16.00"}},
	}
	aoarashi := models.Product{
		Title: "Aoarashi", URL: "u3", Status: models.InStock,
		Variants: []models.Variant{{Size: "20g", Price: "9.80"}},
	}
	soldOut := models.Product{Title: "Kinrin", URL: "u4"}

	newResult := func(products ...models.Product) *models.ScanResult {
		result := &models.ScanResult{}
		for _, p := range products {
			result.Add(p)
		}
		return result
	}

	summary := func(result *models.ScanResult) models.ScanSummary {
		return models.ScanSummary{
			CheckedAt:    checkedAt,
			ProductCount: len(result.Products),
			StockCount:   result.StockCount,
		}
	}

	testCases := []struct {
		name         string
		policy       checker.Policy
		result       *models.ScanResult
		setupMocks   func(mRepo *mocks.StateRepository, result *models.ScanResult)
		wantDecision checker.Decision
		expectError  bool
	}{
		{
			name:   "First launch: every in-stock product is added",
			policy: checker.PolicyAlways,
			result: newResult(wakoNew, soldOut, isuzu),
			setupMocks: func(mRepo *mocks.StateRepository, result *models.ScanResult) {
				mRepo.On("RecordScan", ctx, summary(result)).Return(nil).Once()
				mRepo.On("GetState", ctx).Return(nil, repository.ErrStateNotFound).Once()
				mRepo.On("UpdateState", ctx, &models.State{
					Fingerprint: fingerprint(t, []models.Product{wakoNew, isuzu}),
					Products:    []models.Product{wakoNew, isuzu},
				}).Return(nil).Once()
			},
			wantDecision: checker.Decision{
				Notify:  true,
				Changes: models.Changes{Added: []models.Product{wakoNew, isuzu}},
			},
		},
		{
			name:   "Always policy: unchanged snapshot still alerts",
			policy: checker.PolicyAlways,
			result: newResult(wakoOld),
			setupMocks: func(mRepo *mocks.StateRepository, result *models.ScanResult) {
				mRepo.On("RecordScan", ctx, summary(result)).Return(nil).Once()
				mRepo.On("GetState", ctx).Return(&models.State{
					Fingerprint: fingerprint(t, []models.Product{wakoOld}),
					Products:    []models.Product{wakoOld},
				}, nil).Once()
			},
			wantDecision: checker.Decision{Notify: true},
		},
		{
			name:   "On change policy: unchanged snapshot is suppressed",
			policy: checker.PolicyOnChange,
			result: newResult(wakoOld, soldOut),
			setupMocks: func(mRepo *mocks.StateRepository, result *models.ScanResult) {
				mRepo.On("RecordScan", ctx, summary(result)).Return(nil).Once()
				mRepo.On("GetState", ctx).Return(&models.State{
					Fingerprint: fingerprint(t, []models.Product{wakoOld}),
					Products:    []models.Product{wakoOld},
				}, nil).Once()
			},
			wantDecision: checker.Decision{Notify: false},
		},
		{
			name:   "On change policy: all types of changes found",
			policy: checker.PolicyOnChange,
			result: newResult(wakoNew, aoarashi),
			setupMocks: func(mRepo *mocks.StateRepository, result *models.ScanResult) {
				mRepo.On("RecordScan", ctx, summary(result)).Return(nil).Once()
				mRepo.On("GetState", ctx).Return(&models.State{
					Fingerprint: fingerprint(t, []models.Product{wakoOld, isuzu}),
					Products:    []models.Product{wakoOld, isuzu},
				}, nil).Once()
				mRepo.On("UpdateState", ctx, mock.AnythingOfType("*models.State")).Return(nil).Once()
			},
			wantDecision: checker.Decision{
				Notify: true,
				Changes: models.Changes{
					Added:   []models.Product{aoarashi},
					Removed: []models.Product{isuzu},
					Changed: []models.ChangeInfo{{Old: wakoOld, New: wakoNew}},
				},
			},
		},
		{
			name:   "No stock: never alerts, snapshot is cleared",
			policy: checker.PolicyAlways,
			result: newResult(soldOut),
			setupMocks: func(mRepo *mocks.StateRepository, result *models.ScanResult) {
				mRepo.On("RecordScan", ctx, summary(result)).Return(nil).Once()
				mRepo.On("GetState", ctx).Return(&models.State{
					Fingerprint: fingerprint(t, []models.Product{isuzu}),
					Products:    []models.Product{isuzu},
				}, nil).Once()
				mRepo.On("UpdateState", ctx, mock.MatchedBy(func(s *models.State) bool {
					return len(s.Products) == 0
				})).Return(nil).Once()
			},
			wantDecision: checker.Decision{
				Notify:  false,
				Changes: models.Changes{Removed: []models.Product{isuzu}},
			},
		},
		{
			name:   "Error: Repository cannot record scan",
			policy: checker.PolicyAlways,
			result: newResult(wakoOld),
			setupMocks: func(mRepo *mocks.StateRepository, _ *models.ScanResult) {
				mRepo.On("RecordScan", ctx, mock.Anything).Return(assert.AnError).Once()
			},
			expectError: true,
		},
		{
			name:   "Error: Repository cannot get state",
			policy: checker.PolicyAlways,
			result: newResult(wakoOld),
			setupMocks: func(mRepo *mocks.StateRepository, _ *models.ScanResult) {
				mRepo.On("RecordScan", ctx, mock.Anything).Return(nil).Once()
				mRepo.On("GetState", ctx).Return(nil, assert.AnError).Once()
			},
			expectError: true,
		},
		{
			name:   "Error: Repository cannot update state",
			policy: checker.PolicyOnChange,
			result: newResult(wakoOld),
			setupMocks: func(mRepo *mocks.StateRepository, _ *models.ScanResult) {
				mRepo.On("RecordScan", ctx, mock.Anything).Return(nil).Once()
				mRepo.On("GetState", ctx).Return(nil, repository.ErrStateNotFound).Once()
				mRepo.On("UpdateState", ctx, mock.Anything).Return(assert.AnError).Once()
			},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := mocks.NewStateRepository(t)
			tc.setupMocks(mockRepo, tc.result)

			stockChecker := checker.NewChecker(logger, mockRepo, tc.policy)

			decision, err := stockChecker.Evaluate(ctx, tc.result, checkedAt)

			if tc.expectError {
				require.ErrorIs(t, err, assert.AnError)
				require.ErrorContains(t, err, "checker.Evaluate")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantDecision, decision)
		})
	}
}
