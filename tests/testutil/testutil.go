// Package testutil provides shared helpers for the pricing engine tests:
// sqlmock backed GORM handles, gin test contexts, deterministic IDs and
// domain fixtures.
package testutil

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nvictorme/nikola-sub002/internal/domain/catalog"
	"github.com/nvictorme/nikola-sub002/internal/domain/partner"
	"github.com/nvictorme/nikola-sub002/internal/domain/pricing"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockDB wraps a GORM database with sqlmock for testing.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB creates a postgres dialect GORM handle over sqlmock. The
// connection is closed on test cleanup.
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create sqlmock")
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err, "Failed to open GORM connection")

	return &MockDB{DB: gormDB, Mock: mock, SqlDB: mockDB}
}

// ExpectationsWereMet verifies that all expectations were met.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "Unmet database expectations")
}

// TestContext wraps a Gin test context with HTTP recorder.
type TestContext struct {
	Context  *gin.Context
	Recorder *httptest.ResponseRecorder
	Engine   *gin.Engine
}

// NewTestContext creates a gin context serving GET /.
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	w := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	return &TestContext{Context: c, Recorder: w, Engine: engine}
}

// SetRequestID stores a request ID the way the RequestID middleware does.
func (tc *TestContext) SetRequestID(id string) {
	tc.Context.Set("request_id", id)
}

// ResponseBody returns the response body as bytes.
func (tc *TestContext) ResponseBody() []byte {
	return tc.Recorder.Body.Bytes()
}

// ResponseCode returns the HTTP status code.
func (tc *TestContext) ResponseCode() int {
	return tc.Recorder.Code
}

// NewTestUUID derives a stable UUID from seed.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// Dec parses a decimal literal, failing loudly on typos.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DecPtr is Dec returning a pointer, for optional price fields.
func DecPtr(s string) *decimal.Decimal {
	d := Dec(s)
	return &d
}

// NewProduct builds a product with the three tier prices set. Pass "" for
// a tier without a price.
func NewProduct(t *testing.T, code, general, installer, wholesale string) *catalog.Product {
	t.Helper()

	p, err := catalog.NewProduct(code, "Product "+code)
	require.NoError(t, err)
	if general != "" {
		p.PriceGeneral = DecPtr(general)
	}
	if installer != "" {
		p.PriceInstaller = DecPtr(installer)
	}
	if wholesale != "" {
		p.PriceWholesale = DecPtr(wholesale)
	}
	return p
}

// WithOffer sets an active offer on p between start and end (YYYY-MM-DD).
func WithOffer(p *catalog.Product, price, start, end string) *catalog.Product {
	p.OfferActive = true
	p.OfferPrice = DecPtr(price)
	p.OfferStart = start
	p.OfferEnd = end
	return p
}

// NewCustomer builds a person of the given class. A non-empty creditLimit
// enables credit with that limit.
func NewCustomer(t *testing.T, code string, class pricing.PricingClass, creditLimit string) *partner.Customer {
	t.Helper()

	c, err := partner.NewCustomer(code, "Customer "+code, partner.CustomerKindPerson, class)
	require.NoError(t, err)
	if creditLimit != "" {
		require.NoError(t, c.EnableCredit(Dec(creditLimit)))
	}
	return c
}

// RequireEventually retries condition until it holds or timeout passes.
func RequireEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}
	require.Fail(t, "Condition not met within timeout", msgAndArgs...)
}
