package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fittrack/fitness-api/internal/domain"
	"fittrack/fitness-api/internal/identity"
	"fittrack/fitness-api/internal/query"
	"fittrack/fitness-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stub services pin each handler test to one canned outcome, so these tests
// cover routing, auth gating and the envelope translation only.

type stubProvider struct {
	ident *identity.Identity
	err   error
}

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://github.example/login/oauth/authorize?state=" + state
}

func (p *stubProvider) Exchange(ctx context.Context, code string) (*identity.Identity, error) {
	return p.ident, p.err
}

type stubUserService struct {
	user       *domain.User
	list       []domain.User
	pagination query.Pagination
	err        error
}

func (s *stubUserService) Create(ctx context.Context, input service.CreateUserInput) (*domain.User, error) {
	return s.user, s.err
}

func (s *stubUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.user, s.err
}

func (s *stubUserService) List(ctx context.Context, q *query.UserQuery) ([]domain.User, query.Pagination, error) {
	return s.list, s.pagination, s.err
}

func (s *stubUserService) Update(ctx context.Context, id string, input service.UpdateUserInput) (*domain.User, error) {
	return s.user, s.err
}

func (s *stubUserService) Delete(ctx context.Context, id string) error {
	return s.err
}

type stubWorkoutService struct {
	workout    *domain.Workout
	list       []domain.Workout
	pagination query.Pagination
	err        error
}

func (s *stubWorkoutService) Create(ctx context.Context, input service.CreateWorkoutInput) (*domain.Workout, error) {
	return s.workout, s.err
}

func (s *stubWorkoutService) Get(ctx context.Context, id string) (*domain.Workout, error) {
	return s.workout, s.err
}

func (s *stubWorkoutService) List(ctx context.Context, q *query.WorkoutQuery) ([]domain.Workout, query.Pagination, error) {
	return s.list, s.pagination, s.err
}

func (s *stubWorkoutService) Update(ctx context.Context, id string, input service.UpdateWorkoutInput) (*domain.Workout, error) {
	return s.workout, s.err
}

func (s *stubWorkoutService) Delete(ctx context.Context, id string) error {
	return s.err
}

type stubStatsService struct {
	userStats    *service.UserStats
	workoutStats *service.WorkoutStats
	err          error
}

func (s *stubStatsService) UserStats(ctx context.Context, userID string) (*service.UserStats, error) {
	return s.userStats, s.err
}

func (s *stubStatsService) WorkoutStats(ctx context.Context) (*service.WorkoutStats, error) {
	return s.workoutStats, s.err
}

func testIdentity() *identity.Identity {
	return &identity.Identity{ID: "42", Username: "octocat", DisplayName: "Octo Cat", Email: "octo@example.com"}
}

func newTestAuthService() service.AuthService {
	return service.NewAuthService(&stubProvider{ident: testIdentity()}, "test-secret", time.Hour)
}

func newTestRouter(users service.UserService, auth service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, auth, users, &stubWorkoutService{}, &stubStatsService{})
	return router
}

func doRequest(router *gin.Engine, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:            primitive.NewObjectID(),
		Name:          "Alice",
		Email:         "alice@example.com",
		ActivityLevel: domain.DefaultActivityLevel,
		IsActive:      true,
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&stubUserService{}, newTestAuthService())

	recorder := doRequest(router, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "ok")
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", domain.ValidationError("bad payload"), http.StatusBadRequest},
		{"invalid parameter", domain.InvalidParameterError("page", "must be a positive integer", "x"), http.StatusBadRequest},
		{"not found", domain.NotFoundError("user", "abc"), http.StatusNotFound},
		{"conflict", domain.ConflictError("email already registered"), http.StatusConflict},
		{"internal", domain.InternalError("boom", nil), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&stubUserService{err: tc.err}, newTestAuthService())

			recorder := doRequest(router, http.MethodGet, "/api/v1/users/abc", "", nil)

			assert.Equal(t, tc.status, recorder.Code)
			body := decodeError(t, recorder)
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
			assert.False(t, body.Timestamp.IsZero())
		})
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	router := gin.New()
	SetupRoutes(router, newTestAuthService(),
		&stubUserService{err: domain.InternalError("database exploded", nil)},
		&stubWorkoutService{}, &stubStatsService{})

	recorder := doRequest(router, http.MethodGet, "/api/v1/users/abc", "", nil)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	body := decodeError(t, recorder)
	assert.Equal(t, "an unexpected error occurred", body.Message)
}

func TestListUsers_RejectsBadParams(t *testing.T) {
	router := newTestRouter(&stubUserService{}, newTestAuthService())

	recorder := doRequest(router, http.MethodGet, "/api/v1/users?limit=0", "", nil)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeError(t, recorder)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "limit", body.Errors[0].Field)
}

func TestListUsers_Envelope(t *testing.T) {
	svc := &stubUserService{
		list:       []domain.User{*sampleUser()},
		pagination: query.NewPagination(query.Page{Number: 1, Limit: 10}, 1),
	}
	router := newTestRouter(svc, newTestAuthService())

	recorder := doRequest(router, http.MethodGet, "/api/v1/users", "", nil)

	require.Equal(t, http.StatusOK, recorder.Code)
	var body struct {
		Success    bool              `json:"success"`
		Data       []UserResponse    `json:"data"`
		Pagination *query.Pagination `json:"pagination"`
		Timestamp  time.Time         `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Alice", body.Data[0].Name)
	require.NotNil(t, body.Pagination)
	assert.Equal(t, int64(1), body.Pagination.TotalItems)
	assert.False(t, body.Timestamp.IsZero())
}

func TestWriteWithoutTokenPointsAtLogin(t *testing.T) {
	router := newTestRouter(&stubUserService{user: sampleUser()}, newTestAuthService())

	recorder := doRequest(router, http.MethodPost, "/api/v1/users",
		`{"name":"Alice","email":"alice@example.com"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	body := decodeError(t, recorder)
	assert.Equal(t, loginPath, body.LoginURL)
}

func TestWriteWithMalformedHeader(t *testing.T) {
	router := newTestRouter(&stubUserService{user: sampleUser()}, newTestAuthService())

	header := http.Header{"Authorization": {"Token abc"}}
	recorder := doRequest(router, http.MethodPost, "/api/v1/users",
		`{"name":"Alice","email":"alice@example.com"}`, header)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestWriteWithValidToken(t *testing.T) {
	auth := newTestAuthService()
	token, _, err := auth.HandleCallback(context.Background(), "good-code")
	require.NoError(t, err)

	router := newTestRouter(&stubUserService{user: sampleUser()}, auth)

	header := http.Header{"Authorization": {"Bearer " + token}}
	recorder := doRequest(router, http.MethodPost, "/api/v1/users",
		`{"name":"Alice","email":"alice@example.com"}`, header)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"success":true`)
}

func TestWriteWithExpiredToken(t *testing.T) {
	auth := service.NewAuthService(&stubProvider{ident: testIdentity()}, "test-secret", time.Nanosecond)
	token, _, err := auth.HandleCallback(context.Background(), "good-code")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	router := newTestRouter(&stubUserService{user: sampleUser()}, auth)

	header := http.Header{"Authorization": {"Bearer " + token}}
	recorder := doRequest(router, http.MethodPost, "/api/v1/users",
		`{"name":"Alice","email":"alice@example.com"}`, header)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	body := decodeError(t, recorder)
	assert.Contains(t, body.Message, "expired")
}

func TestCreateUser_BindingValidation(t *testing.T) {
	auth := newTestAuthService()
	token, _, err := auth.HandleCallback(context.Background(), "good-code")
	require.NoError(t, err)

	router := newTestRouter(&stubUserService{user: sampleUser()}, auth)

	header := http.Header{"Authorization": {"Bearer " + token}}
	recorder := doRequest(router, http.MethodPost, "/api/v1/users",
		`{"name":"A","email":"nope"}`, header)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	body := decodeError(t, recorder)
	assert.NotEmpty(t, body.Errors)
}

func TestLoginRedirectsToProvider(t *testing.T) {
	router := newTestRouter(&stubUserService{}, newTestAuthService())

	recorder := doRequest(router, http.MethodGet, "/api/v1/auth/github/login", "", nil)

	assert.Equal(t, http.StatusTemporaryRedirect, recorder.Code)
	location := recorder.Header().Get("Location")
	assert.Contains(t, location, "state=")

	var stateCookie *http.Cookie
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == "oauth_state" {
			stateCookie = cookie
		}
	}
	require.NotNil(t, stateCookie)
	assert.NotEmpty(t, stateCookie.Value)
	assert.True(t, stateCookie.HttpOnly)
	assert.Contains(t, location, stateCookie.Value)
}

func TestCallback_StateMismatch(t *testing.T) {
	router := newTestRouter(&stubUserService{}, newTestAuthService())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/github/callback?state=bogus&code=x", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "expected"})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCallback_IssuesUsableToken(t *testing.T) {
	auth := newTestAuthService()
	router := newTestRouter(&stubUserService{}, auth)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/github/callback?state=abc&code=good-code", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "abc"})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	var body struct {
		Data SessionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)

	// The issued token passes the write gate.
	header := http.Header{"Authorization": {"Bearer " + body.Data.Token}}
	me := doRequest(router, http.MethodGet, "/api/v1/auth/me", "", header)
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), "octocat")
}

func TestCallback_RejectedCode(t *testing.T) {
	auth := service.NewAuthService(&stubProvider{err: identity.ErrExchangeFailed}, "test-secret", time.Hour)
	router := newTestRouter(&stubUserService{}, auth)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/github/callback?state=abc&code=bad-code", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "abc"})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	body := decodeError(t, recorder)
	assert.Equal(t, loginPath, body.LoginURL)
}

func TestWorkoutStatsRouteNotShadowed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, newTestAuthService(), &stubUserService{}, &stubWorkoutService{},
		&stubStatsService{workoutStats: &service.WorkoutStats{}})

	recorder := doRequest(router, http.MethodGet, "/api/v1/workouts/stats", "", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "overall")
}
