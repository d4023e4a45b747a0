package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	account "auction-marketplace/internal/accountService"
	admin "auction-marketplace/internal/adminService"
	auction "auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/auth"
	bidding "auction-marketplace/internal/biddingService"
	"auction-marketplace/internal/clock"
	closer "auction-marketplace/internal/closerService"
	commission "auction-marketplace/internal/commissionService"
	"auction-marketplace/internal/events"
	"auction-marketplace/internal/media"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "root@example.com"
	adminPassword = "supersecret"
)

var baseTime = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

// TestEnv is a fully wired marketplace on the in-memory store with a manual clock
type TestEnv struct {
	Router *gin.Engine
	Repo   *repository.MemoryRepo
	Clock  *clock.Manual
	Closer *closer.CloserService
}

// SetupTestEnv initializes the router with in-memory repository for integration testing.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clk := clock.NewManual(baseTime)
	repo := repository.NewMemoryRepo()
	images := media.Placeholder{}
	tokens := auth.NewTokenManager("integration-secret", 24*time.Hour, clk)

	accounts := account.NewAccountService(repo, images, tokens, clk)
	_, err := accounts.EnsureSuperAdmin(context.Background(), "Super Admin", adminEmail, adminPassword)
	require.NoError(t, err)

	router := server.SetupRouter(server.Dependencies{
		Accounts:   accounts,
		Auctions:   auction.NewAuctionService(repo, repo, repo, images, clk),
		Bids:       bidding.NewBiddingService(repo, repo, clk),
		Commission: commission.NewCommissionService(repo, clk),
		Admin:      admin.NewAdminService(repo, repo),
		Tokens:     tokens,
		Users:      repo,
		Images:     images,
		Clock:      clk,
		CookieTTL:  24 * time.Hour,
	})

	return &TestEnv{
		Router: router,
		Repo:   repo,
		Clock:  clk,
		Closer: closer.NewCloserService(repo, repo, repo, clk, decimal.RequireFromString("0.05"), events.LogPublisher{}),
	}
}

// Response is the decoded JSON envelope
type Response struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Decode unmarshals the data field into v
func (r Response) Decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, v))
}

func (e *TestEnv) serve(t *testing.T, req *http.Request, token string) (Response, *httptest.ResponseRecorder) {
	t.Helper()
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)

	var resp Response
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return resp, w
}

// JSON executes a request with an optional JSON body as the holder of token
func (e *TestEnv) JSON(t *testing.T, method, url, token string, body any) (Response, *httptest.ResponseRecorder) {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	return e.serve(t, req, token)
}

// Multipart posts fields plus one png file under fileField
func (e *TestEnv) Multipart(t *testing.T, url, token string, fields map[string]string, fileField string) (Response, *httptest.ResponseRecorder) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="upload.png"`, fileField))
		h.Set("Content-Type", "image/png")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG test image"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return e.serve(t, req, token)
}

// Register signs up a user over HTTP and returns its id and session token
func (e *TestEnv) Register(t *testing.T, userName, role string) (string, string) {
	t.Helper()
	fields := map[string]string{
		"userName": userName,
		"email":    userName + "@example.com",
		"password": "password123",
		"phone":    "03001234567",
		"address":  "Lahore",
		"role":     role,
	}
	if role == "Auctioneer" {
		fields["bankAccountNumber"] = "PK00" + userName
		fields["bankAccountName"] = userName
		fields["bankName"] = "HBL"
		fields["easypaisaAccountNumber"] = "03001234567"
		fields["paypalEmail"] = userName + "@paypal.example"
	}

	resp, w := e.Multipart(t, "/api/v1/user/register", "", fields, "profileImage")
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)

	var out struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	resp.Decode(t, &out)
	require.NotEmpty(t, out.Token)
	return out.User.ID, out.Token
}

// Login returns a session token for email
func (e *TestEnv) Login(t *testing.T, email, password string) string {
	t.Helper()
	resp, w := e.JSON(t, http.MethodPost, "/api/v1/user/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, w.Code, resp.Error)

	var out struct {
		Token string `json:"token"`
	}
	resp.Decode(t, &out)
	return out.Token
}

// CreateAuction lists an item running from start to end and returns its id
func (e *TestEnv) CreateAuction(t *testing.T, token, title string, startingBid string, start, end time.Time) string {
	t.Helper()
	resp, w := e.Multipart(t, "/api/v1/auctionitem/create", token, map[string]string{
		"title":       title,
		"description": title + " in good shape",
		"category":    "Electronics",
		"condition":   "Used",
		"startingBid": startingBid,
		"startTime":   start.Format(time.RFC3339),
		"endTime":     end.Format(time.RFC3339),
	}, "image")
	require.Equal(t, http.StatusCreated, w.Code, resp.Error)

	var created struct {
		ID string `json:"id"`
	}
	resp.Decode(t, &created)
	return created.ID
}
