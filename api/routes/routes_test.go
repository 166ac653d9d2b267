package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/retail-loyalty-backend/api/routes"
	"github.com/ArowuTest/retail-loyalty-backend/internal/handlers"
	"github.com/ArowuTest/retail-loyalty-backend/internal/middleware"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/ArowuTest/retail-loyalty-backend/internal/rules"
	"github.com/ArowuTest/retail-loyalty-backend/internal/services"
	"github.com/ArowuTest/retail-loyalty-backend/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

const testSecret = "test-secret"

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	gin.SetMode(gin.TestMode)

	engine, err := rules.NewCELEngine()
	s.Require().NoError(err)
	params := services.ServiceParams{
		Stores:     s.GetStores(),
		Logger:     s.GetLogger(),
		Publisher:  s.GetPublisher(),
		Metrics:    s.GetMetrics(),
		Codes:      &testutil.SequenceCodeGenerator{},
		Conditions: engine,
		Location:   s.GetLocation(),
		Now:        s.Clock(),
	}

	transactionService := services.NewTransactionService(params, services.NewRuleEvaluator(params), services.NewVoucherIssuer(params))
	voucherService := services.NewVoucherService(params)

	s.router = routes.SetupRouter(routes.RouterOptions{
		JWTSecret: testSecret,
		Logger:    s.GetLogger(),
		Metrics:   s.GetMetrics(),
		Gatherer:  prometheus.NewRegistry(),
	}, routes.HandlerDependencies{
		MemberHandler:      handlers.NewMemberHandler(services.NewMemberService(params), voucherService, transactionService),
		TransactionHandler: handlers.NewTransactionHandler(transactionService),
		VoucherHandler:     handlers.NewVoucherHandler(voucherService, s.Clock()),
		RuleHandler:        handlers.NewRuleHandler(services.NewRuleService(params)),
		EventHandler:       handlers.NewEventHandler(services.NewEventService(params)),
		DrawHandler:        handlers.NewDrawHandler(services.NewDrawService(params)),
		PrizeHandler:       handlers.NewPrizeHandler(services.NewPrizeService(params)),
		WinnerHandler:      handlers.NewWinnerHandler(services.NewWinnerService(params)),
	})
}

func (s *RouterSuite) token(role models.AdminRole) string {
	token, err := middleware.SignAdminToken(testSecret, models.AdminIdentity{
		ID:       "adm_1",
		Username: "tester",
		Role:     role,
	}, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))})
	s.Require().NoError(err)
	return token
}

func (s *RouterSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *RouterSuite) TestHealthIsPublic() {
	w := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok"}`, w.Body.String())
}

func (s *RouterSuite) TestProtectedRoutesNeedToken() {
	w := s.do(http.MethodGet, "/api/v1/rules", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/rules", "not-a-jwt", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Contains(w.Body.String(), "Invalid token")
}

func (s *RouterSuite) TestCashierCannotManageRules() {
	w := s.do(http.MethodGet, "/api/v1/rules", s.token(models.RoleCashier), nil)
	s.Equal(http.StatusForbidden, w.Code)

	var resp middleware.ErrorResponse
	s.decode(w, &resp)
	s.NotEmpty(resp.Error)

	w = s.do(http.MethodGet, "/api/v1/rules", s.token(models.RoleAdmin), nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestRecordValidateRedeem() {
	member := s.CreateMember(models.MemberTierGold)
	s.CreateActiveRule(100000, 1)
	cashier := s.token(models.RoleCashier)

	w := s.do(http.MethodPost, "/api/v1/transactions", cashier, map[string]any{
		"memberId":    member.ID,
		"receiptCode": "RCP-001",
		"amount":      "250000",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var recorded models.TransactionResult
	s.decode(w, &recorded)
	s.Require().Len(recorded.Vouchers, 1)
	code := recorded.Vouchers[0].Code

	w = s.do(http.MethodPost, "/api/v1/vouchers/validate", cashier, map[string]any{"code": code})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var validation models.VoucherValidation
	s.decode(w, &validation)
	s.True(validation.Valid)

	second := s.CreateTransaction(member.ID, "RCP-002", 50000)
	w = s.do(http.MethodPost, "/api/v1/vouchers/redeem", cashier, map[string]any{
		"code":          code,
		"transactionId": second.ID,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var redeemed models.Voucher
	s.decode(w, &redeemed)
	s.Equal(models.VoucherStatusUsed, redeemed.Status)

	w = s.do(http.MethodPost, "/api/v1/vouchers/redeem", cashier, map[string]any{
		"code":          code,
		"transactionId": second.ID,
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	var failed middleware.ErrorResponse
	s.decode(w, &failed)
	s.NotEmpty(failed.Error)

	w = s.do(http.MethodGet, "/api/v1/vouchers/"+redeemed.ID+"/logs", cashier, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestDuplicateReceiptIsConflict() {
	member := s.CreateMember(models.MemberTierGold)
	cashier := s.token(models.RoleCashier)
	body := map[string]any{"memberId": member.ID, "receiptCode": "RCP-001", "amount": "1000"}

	s.Require().Equal(http.StatusCreated, s.do(http.MethodPost, "/api/v1/transactions", cashier, body).Code)
	s.Equal(http.StatusConflict, s.do(http.MethodPost, "/api/v1/transactions", cashier, body).Code)
}

func (s *RouterSuite) TestMalformedBodyIsBadRequest() {
	w := s.do(http.MethodPost, "/api/v1/vouchers/validate", s.token(models.RoleCashier), map[string]any{})
	s.Equal(http.StatusBadRequest, w.Code)

	var resp middleware.ErrorResponse
	s.decode(w, &resp)
	s.Contains(resp.Error, "Invalid request")
}

func (s *RouterSuite) TestUnknownVoucherIsNotFound() {
	w := s.do(http.MethodGet, "/api/v1/vouchers/vch_missing", s.token(models.RoleCashier), nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestExpireEndpointNeedsAdmin() {
	s.Equal(http.StatusForbidden, s.do(http.MethodPost, "/api/v1/vouchers/expire", s.token(models.RoleCashier), nil).Code)

	w := s.do(http.MethodPost, "/api/v1/vouchers/expire", s.token(models.RoleAdmin), nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"expired":0}`, w.Body.String())
}
