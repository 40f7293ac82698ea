package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"re-view.backend/internal/domain/entities"
	"re-view.backend/internal/domain/policy"
	"re-view.backend/internal/interfaces/http/middleware"
	"re-view.backend/pkg/jwt"
	"re-view.backend/pkg/validation"
)

const testUserHeader = "X-Test-User"

// newRouter installs a middleware that turns X-Test-User into an actor
func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.RegisterWithGin()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if raw := c.GetHeader(testUserHeader); raw != "" {
			id := uuid.MustParse(raw)
			c.Set(middleware.ActorKey, policy.NewActor(id, []entities.Role{entities.RoleUser}, nil))
			c.Set(middleware.UserIDKey, id)
		}
		c.Next()
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type authServiceStub struct {
	signupFn  func(ctx context.Context, input *entities.SignupInput) (*entities.User, error)
	signinFn  func(ctx context.Context, input *entities.SigninInput) (*entities.AuthResponse, error)
	signoutFn func(ctx context.Context, sessionID string) error
	refreshFn func(ctx context.Context, token string) (*jwt.TokenPair, error)
}

func (s authServiceStub) Signup(ctx context.Context, input *entities.SignupInput) (*entities.User, error) {
	return s.signupFn(ctx, input)
}
func (s authServiceStub) Signin(ctx context.Context, input *entities.SigninInput) (*entities.AuthResponse, error) {
	return s.signinFn(ctx, input)
}
func (s authServiceStub) Signout(ctx context.Context, sessionID string) error {
	return s.signoutFn(ctx, sessionID)
}
func (s authServiceStub) RefreshToken(ctx context.Context, token string) (*jwt.TokenPair, error) {
	return s.refreshFn(ctx, token)
}

type userServiceStub struct {
	currentFn func(ctx context.Context, actor *policy.Actor) (*entities.User, error)
	getFn     func(ctx context.Context, id uuid.UUID) (*entities.UserProfile, error)
	searchFn  func(ctx context.Context, actor *policy.Actor, query string) ([]*entities.User, error)
	updateFn  func(ctx context.Context, actor *policy.Actor, id uuid.UUID, update entities.UserUpdate) (*entities.User, error)
}

func (s userServiceStub) GetCurrentUser(ctx context.Context, actor *policy.Actor) (*entities.User, error) {
	return s.currentFn(ctx, actor)
}
func (s userServiceStub) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.UserProfile, error) {
	return s.getFn(ctx, id)
}
func (s userServiceStub) SearchUsers(ctx context.Context, actor *policy.Actor, query string) ([]*entities.User, error) {
	return s.searchFn(ctx, actor, query)
}
func (s userServiceStub) UpdateUser(ctx context.Context, actor *policy.Actor, id uuid.UUID, update entities.UserUpdate) (*entities.User, error) {
	return s.updateFn(ctx, actor, id, update)
}

type brandServiceStub struct {
	createFn     func(ctx context.Context, actor *policy.Actor, input *entities.CreateBrandInput) (*entities.Brand, error)
	verifyFn     func(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*entities.Brand, error)
	getFn        func(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*entities.Brand, error)
	searchFn     func(ctx context.Context, query string) ([]*entities.Brand, error)
	listFn       func(ctx context.Context, actor *policy.Actor, page entities.PageRequest) (*entities.Page[*entities.Brand], error)
	listByUserFn func(ctx context.Context, actor *policy.Actor, userID uuid.UUID, page entities.PageRequest) (*entities.Page[*entities.Brand], error)
}

func (s brandServiceStub) CreateBrand(ctx context.Context, actor *policy.Actor, input *entities.CreateBrandInput) (*entities.Brand, error) {
	return s.createFn(ctx, actor, input)
}
func (s brandServiceStub) VerifyBrand(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*entities.Brand, error) {
	return s.verifyFn(ctx, actor, id)
}
func (s brandServiceStub) GetBrandByID(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*entities.Brand, error) {
	return s.getFn(ctx, actor, id)
}
func (s brandServiceStub) SearchBrands(ctx context.Context, query string) ([]*entities.Brand, error) {
	return s.searchFn(ctx, query)
}
func (s brandServiceStub) ListBrands(ctx context.Context, actor *policy.Actor, page entities.PageRequest) (*entities.Page[*entities.Brand], error) {
	return s.listFn(ctx, actor, page)
}
func (s brandServiceStub) ListBrandsByUser(ctx context.Context, actor *policy.Actor, userID uuid.UUID, page entities.PageRequest) (*entities.Page[*entities.Brand], error) {
	return s.listByUserFn(ctx, actor, userID, page)
}

type productServiceStub struct {
	createFn      func(ctx context.Context, actor *policy.Actor, input *entities.CreateProductInput) (*entities.Product, error)
	getFn         func(ctx context.Context, id uuid.UUID) (*entities.Product, error)
	listFn        func(ctx context.Context, page entities.PageRequest) (*entities.Page[*entities.Product], error)
	listByBrandFn func(ctx context.Context, actor *policy.Actor, brandID uuid.UUID, page entities.PageRequest) (*entities.Page[*entities.Product], error)
	listByUserFn  func(ctx context.Context, userID uuid.UUID, page entities.PageRequest) (*entities.Page[*entities.Product], error)
	searchFn      func(ctx context.Context, query string) ([]*entities.Product, error)
	updateFn      func(ctx context.Context, actor *policy.Actor, id uuid.UUID, update entities.ProductUpdate) (*entities.Product, error)
	deleteFn      func(ctx context.Context, actor *policy.Actor, id uuid.UUID) error
	mergeFn       func(ctx context.Context, actor *policy.Actor, targetID, mergeID uuid.UUID) (uuid.UUID, error)
}

func (s productServiceStub) CreateProduct(ctx context.Context, actor *policy.Actor, input *entities.CreateProductInput) (*entities.Product, error) {
	return s.createFn(ctx, actor, input)
}
func (s productServiceStub) GetProductByID(ctx context.Context, id uuid.UUID) (*entities.Product, error) {
	return s.getFn(ctx, id)
}
func (s productServiceStub) ListProducts(ctx context.Context, page entities.PageRequest) (*entities.Page[*entities.Product], error) {
	return s.listFn(ctx, page)
}
func (s productServiceStub) ListProductsByBrand(ctx context.Context, actor *policy.Actor, brandID uuid.UUID, page entities.PageRequest) (*entities.Page[*entities.Product], error) {
	return s.listByBrandFn(ctx, actor, brandID, page)
}
func (s productServiceStub) ListProductsByUser(ctx context.Context, userID uuid.UUID, page entities.PageRequest) (*entities.Page[*entities.Product], error) {
	return s.listByUserFn(ctx, userID, page)
}
func (s productServiceStub) SearchProducts(ctx context.Context, query string) ([]*entities.Product, error) {
	return s.searchFn(ctx, query)
}
func (s productServiceStub) UpdateProduct(ctx context.Context, actor *policy.Actor, id uuid.UUID, update entities.ProductUpdate) (*entities.Product, error) {
	return s.updateFn(ctx, actor, id, update)
}
func (s productServiceStub) DeleteProduct(ctx context.Context, actor *policy.Actor, id uuid.UUID) error {
	return s.deleteFn(ctx, actor, id)
}
func (s productServiceStub) MergeProducts(ctx context.Context, actor *policy.Actor, targetID, mergeID uuid.UUID) (uuid.UUID, error) {
	return s.mergeFn(ctx, actor, targetID, mergeID)
}

type reviewServiceStub struct {
	postFn      func(ctx context.Context, actor *policy.Actor, input *entities.PostReviewInput) (*entities.Review, error)
	getFn       func(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*entities.Review, error)
	deleteFn    func(ctx context.Context, actor *policy.Actor, id uuid.UUID) error
	statusFn    func(ctx context.Context, actor *policy.Actor, id uuid.UUID, status entities.ReviewStatus) (*entities.Review, error)
	listFn      func(ctx context.Context, actor *policy.Actor, id uuid.UUID, page entities.PageRequest) (*entities.ReviewPage, error)
	aggregateFn func(ctx context.Context, actor *policy.Actor, scope entities.ReviewScope) (entities.RatingSummary, error)
}

func (s reviewServiceStub) PostReview(ctx context.Context, actor *policy.Actor, input *entities.PostReviewInput) (*entities.Review, error) {
	return s.postFn(ctx, actor, input)
}
func (s reviewServiceStub) GetReviewByID(ctx context.Context, actor *policy.Actor, id uuid.UUID) (*entities.Review, error) {
	return s.getFn(ctx, actor, id)
}
func (s reviewServiceStub) DeleteReview(ctx context.Context, actor *policy.Actor, id uuid.UUID) error {
	return s.deleteFn(ctx, actor, id)
}
func (s reviewServiceStub) ChangeReviewStatus(ctx context.Context, actor *policy.Actor, id uuid.UUID, status entities.ReviewStatus) (*entities.Review, error) {
	return s.statusFn(ctx, actor, id, status)
}
func (s reviewServiceStub) ListProductReviews(ctx context.Context, actor *policy.Actor, id uuid.UUID, page entities.PageRequest) (*entities.ReviewPage, error) {
	return s.listFn(ctx, actor, id, page)
}
func (s reviewServiceStub) ListBrandReviews(ctx context.Context, actor *policy.Actor, id uuid.UUID, page entities.PageRequest) (*entities.ReviewPage, error) {
	return s.listFn(ctx, actor, id, page)
}
func (s reviewServiceStub) ListUserReviews(ctx context.Context, actor *policy.Actor, id uuid.UUID, page entities.PageRequest) (*entities.ReviewPage, error) {
	return s.listFn(ctx, actor, id, page)
}
func (s reviewServiceStub) Aggregate(ctx context.Context, actor *policy.Actor, scope entities.ReviewScope) (entities.RatingSummary, error) {
	return s.aggregateFn(ctx, actor, scope)
}
