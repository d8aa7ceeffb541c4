package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/openbooks/bookkeeping_app/internal/apperrors"
	"github.com/openbooks/bookkeeping_app/internal/core/domain"
	portssvc "github.com/openbooks/bookkeeping_app/internal/core/ports/services"
	"github.com/openbooks/bookkeeping_app/internal/dto"
	"github.com/openbooks/bookkeeping_app/internal/handlers"
	"github.com/openbooks/bookkeeping_app/internal/middleware"
	"github.com/openbooks/bookkeeping_app/internal/platform/config"
)

const (
	testJWTSecret = "test-secret"
	testJWTIssuer = "bookkeeping-app-test"
)

// --- Mock EntryService ---
type MockEntryService struct {
	mock.Mock
}

var _ portssvc.EntrySvcFacade = (*MockEntryService)(nil)

func (m *MockEntryService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string, role domain.Role) (*domain.JournalEntry, error) {
	args := m.Called(ctx, req, creatorUserID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListEntriesResponse), args.Error(1)
}

func (m *MockEntryService) UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryService) DeleteEntry(ctx context.Context, entryID string, userID string) error {
	args := m.Called(ctx, entryID, userID)
	return args.Error(0)
}

func (m *MockEntryService) ApproveEntry(ctx context.Context, entryID string, approverUserID string, role domain.Role) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, approverUserID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryService) RejectEntry(ctx context.Context, entryID string, approverUserID string, role domain.Role, reason string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, approverUserID, role, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockEntryService) ListLinesByAccount(ctx context.Context, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListLinesResponse), args.Error(1)
}

// --- Test Suite Setup ---
type EntryHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockEntrySvc *MockEntryService
	userID       string
}

func (suite *EntryHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockEntrySvc = new(MockEntryService)
	suite.userID = uuid.NewString()

	cfg := &config.Config{JWTSecret: testJWTSecret, JWTIssuer: testJWTIssuer}
	container := &portssvc.ServiceContainer{Entry: suite.mockEntrySvc}

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, container)
}

// signToken builds a signed JWT for the given subject and role, the way the
// identity collaborator would.
func (suite *EntryHandlerTestSuite) signToken(subject string, role domain.Role) string {
	return suite.signTokenFromIssuer(subject, role, testJWTIssuer)
}

func (suite *EntryHandlerTestSuite) signTokenFromIssuer(subject string, role domain.Role, issuer string) string {
	claims := middleware.LedgerClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	suite.Require().NoError(err)
	return token
}

func (suite *EntryHandlerTestSuite) request(method, path string, body any, role domain.Role) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.signToken(suite.userID, role))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Tests ---

func (suite *EntryHandlerTestSuite) TestCreateEntry_Created() {
	entryID := uuid.NewString()
	entryDate := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
	returned := &domain.JournalEntry{
		EntryID:   entryID,
		EntryDate: entryDate,
		Status:    domain.Pending,
	}
	suite.mockEntrySvc.On("CreateEntry", mock.Anything, mock.AnythingOfType("dto.CreateEntryRequest"), suite.userID, domain.RoleAccountant).Return(returned, nil).Once()

	body := dto.CreateEntryRequest{
		EntryDate: entryDate,
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: uuid.NewString(), Debit: decimal.NewFromInt(100)},
			{AccountID: uuid.NewString(), Credit: decimal.NewFromInt(100)},
		},
	}
	w := suite.request(http.MethodPost, "/api/v1/entries", body, domain.RoleAccountant)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(entryID, resp.EntryID)
	suite.Equal(domain.Pending, resp.Status)
	suite.mockEntrySvc.AssertExpectations(suite.T())
}

func (suite *EntryHandlerTestSuite) TestCreateEntry_ValidationErrorIs400() {
	suite.mockEntrySvc.On("CreateEntry", mock.Anything, mock.Anything, suite.userID, domain.RoleAccountant).Return(nil, apperrors.ErrOutOfBalance).Once()

	body := dto.CreateEntryRequest{
		EntryDate: time.Now(),
		Lines: []dto.CreateEntryLineRequest{
			{AccountID: uuid.NewString(), Debit: decimal.NewFromInt(100)},
			{AccountID: uuid.NewString(), Credit: decimal.NewFromInt(90)},
		},
	}
	w := suite.request(http.MethodPost, "/api/v1/entries", body, domain.RoleAccountant)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *EntryHandlerTestSuite) TestMissingTokenIs401() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockEntrySvc.AssertNotCalled(suite.T(), "ListEntries", mock.Anything, mock.Anything)
}

func (suite *EntryHandlerTestSuite) TestForeignIssuerIs401() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	req.Header.Set("Authorization", "Bearer "+suite.signTokenFromIssuer(suite.userID, domain.RoleAccountant, "some-other-service"))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "issuer")
	suite.mockEntrySvc.AssertNotCalled(suite.T(), "ListEntries", mock.Anything, mock.Anything)
}

func (suite *EntryHandlerTestSuite) TestGetEntry_NotFoundIs404() {
	entryID := uuid.NewString()
	suite.mockEntrySvc.On("GetEntryByID", mock.Anything, entryID).Return(nil, apperrors.ErrNotFound).Once()

	w := suite.request(http.MethodGet, "/api/v1/entries/"+entryID, nil, domain.RoleAccountant)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *EntryHandlerTestSuite) TestApproveEntry_ForbiddenIs403() {
	entryID := uuid.NewString()
	suite.mockEntrySvc.On("ApproveEntry", mock.Anything, entryID, suite.userID, domain.RoleAccountant).Return(nil, apperrors.ErrForbidden).Once()

	w := suite.request(http.MethodPost, fmt.Sprintf("/api/v1/entries/%s/approve", entryID), nil, domain.RoleAccountant)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *EntryHandlerTestSuite) TestApproveEntry_AlreadyApprovedIs409() {
	entryID := uuid.NewString()
	suite.mockEntrySvc.On("ApproveEntry", mock.Anything, entryID, suite.userID, domain.RoleManager).Return(nil, apperrors.ErrNotPending).Once()

	w := suite.request(http.MethodPost, fmt.Sprintf("/api/v1/entries/%s/approve", entryID), nil, domain.RoleManager)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *EntryHandlerTestSuite) TestApproveEntry_PostingFailureIs500() {
	entryID := uuid.NewString()
	suite.mockEntrySvc.On("ApproveEntry", mock.Anything, entryID, suite.userID, domain.RoleManager).
		Return(nil, fmt.Errorf("%w: connection reset", apperrors.ErrPostingFailed)).Once()

	w := suite.request(http.MethodPost, fmt.Sprintf("/api/v1/entries/%s/approve", entryID), nil, domain.RoleManager)

	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.Contains(w.Body.String(), "no balances were changed")
}

func (suite *EntryHandlerTestSuite) TestRejectEntry_MissingReasonIs400() {
	entryID := uuid.NewString()

	w := suite.request(http.MethodPost, fmt.Sprintf("/api/v1/entries/%s/reject", entryID), map[string]string{}, domain.RoleManager)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockEntrySvc.AssertNotCalled(suite.T(), "RejectEntry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryHandlerTestSuite) TestRejectEntry_OK() {
	entryID := uuid.NewString()
	reviewedAt := time.Now().UTC()
	returned := &domain.JournalEntry{
		EntryID:         entryID,
		Status:          domain.Rejected,
		ReviewedBy:      suite.userID,
		ReviewedAt:      &reviewedAt,
		RejectionReason: "duplicate of last week",
	}
	suite.mockEntrySvc.On("RejectEntry", mock.Anything, entryID, suite.userID, domain.RoleManager, "duplicate of last week").Return(returned, nil).Once()

	w := suite.request(http.MethodPost, fmt.Sprintf("/api/v1/entries/%s/reject", entryID), dto.RejectEntryRequest{Reason: "duplicate of last week"}, domain.RoleManager)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.EntryResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.Rejected, resp.Status)
	suite.Equal("duplicate of last week", resp.RejectionReason)
}

func (suite *EntryHandlerTestSuite) TestDeleteEntry_NoContent() {
	entryID := uuid.NewString()
	suite.mockEntrySvc.On("DeleteEntry", mock.Anything, entryID, suite.userID).Return(nil).Once()

	w := suite.request(http.MethodDelete, "/api/v1/entries/"+entryID, nil, domain.RoleAccountant)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockEntrySvc.AssertExpectations(suite.T())
}

func TestEntryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(EntryHandlerTestSuite))
}
