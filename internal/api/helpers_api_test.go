package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/crypto/bcrypt"

	"github.com/YouWantToPinch/hearth-api/internal/auth"
	"github.com/YouWantToPinch/hearth-api/internal/database"
	ht "github.com/YouWantToPinch/hearth-api/internal/hearthtest"
)

type postgresContainer struct {
	Ctx       context.Context
	Container postgres.PostgresContainer
	URI       string
}

type StdoutLogConsumer struct{}

func (lc *StdoutLogConsumer) Accept(l tc.Log) {
	if l.LogType == "STDERR" {
		_, err := fmt.Fprintln(os.Stdout, string(l.Content))
		if err != nil {
			fmt.Println("Error writing to stdout:", err)
			return
		}
	}
}

func SetupPostgres(t testing.TB) *postgresContainer {
	t.Helper()
	ctx := context.Background()

	g := StdoutLogConsumer{}

	pgc, err := postgres.Run(
		ctx,
		"postgres:18.1-alpine",
		postgres.WithDatabase("hearth"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		tc.WithLogConsumerConfig(&tc.LogConsumerConfig{
			Consumers: []tc.LogConsumer{&g},
		}),
		postgres.BasicWaitStrategies(),
		tc.WithReuseByName("hearthdb-api-tests"),
	)
	tc.CleanupContainer(t, pgc)
	require.NoError(t, err)

	err = pgc.Snapshot(ctx)
	require.NoError(t, err)

	dbURL, err := pgc.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	return &postgresContainer{Ctx: ctx, Container: *pgc, URI: dbURL}
}

// testConfig is a dev configuration over a fresh in-memory SQLite store.
// bcrypt at its minimum cost keeps password hashing fast.
func testConfig() Config {
	return Config{
		Platform:    "dev",
		Port:        "8080",
		LogLevel:    slog.LevelError,
		CORSOrigins: []string{"*"},
		Token: auth.TokenConfig{
			Secret:     "hearth-test-secret",
			Algorithm:  "HS256",
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		},
		Hash: auth.HasherConfig{
			Algorithm:  auth.HashBcrypt,
			BcryptCost: bcrypt.MinCost,
		},
		DB: database.Config{
			Backend:    database.BackendSQLite,
			SQLitePath: ":memory:",
		},
	}
}

// doServerSetup returns a server wired to its own store, closed when the
// test ends.
func doServerSetup(t *testing.T, c Config) (*http.Server, *APIConfig) {
	t.Helper()
	cfg := &APIConfig{}
	require.NoError(t, cfg.Init(c))
	require.NoError(t, cfg.ConnectToDB(context.Background()))
	t.Cleanup(func() {
		assert.NoError(t, cfg.Close())
	})
	return &http.Server{Handler: NewHandler(cfg)}, cfg
}

func newTestClient(t *testing.T) *APITestClient {
	t.Helper()
	server, _ := doServerSetup(t, testConfig())
	return &APITestClient{Mux: server.Handler, Resources: map[string]any{}, testState: t}
}

// ---------------
// HELPER FUNCS
// ---------------

type APITestClient struct {
	Mux       http.Handler
	W         *httptest.ResponseRecorder
	Resources map[string]any
	testState *testing.T
}

func (c *APITestClient) GetJSONField(field string) (any, error) {
	return ht.GetJSONField(c.W, field)
}

func (c *APITestClient) GetJSONFieldAsString(field string) (string, error) {
	fieldRetrieved, err := c.GetJSONField(field)
	if err != nil {
		return "", err
	}
	if val, ok := fieldRetrieved.(string); ok {
		return val, nil
	}
	return "", fmt.Errorf("field retrieved from response was not of type string")
}

func (c *APITestClient) GetJSONFieldAsInt64(field string) (int64, error) {
	fieldRetrieved, err := c.GetJSONField(field)
	if err != nil {
		return 0, err
	}
	if val, ok := fieldRetrieved.(int64); ok {
		return val, nil
	}
	return 0, fmt.Errorf("field retrieved from response was not of type int64")
}

// GetJSONFieldAsSlice returns a JSON array field.
func (c *APITestClient) GetJSONFieldAsSlice(field string) []any {
	fieldRetrieved, err := c.GetJSONField(field)
	require.NoError(c.testState, err)
	val, ok := fieldRetrieved.([]any)
	require.True(c.testState, ok, "field %s is not an array", field)
	return val
}

// Request records a new request, saves the response to a new recorder for reference,
// and calls an assert check against the response status code before then returning the request.
func (c *APITestClient) Request(req *http.Request, expectedCode int) *http.Request {
	w := httptest.NewRecorder()
	c.Mux.ServeHTTP(w, req)
	c.W = w
	if expectedCode != 0 {
		assert.Equal(c.testState, expectedCode, c.W.Code, "%s %s: %s", req.Method, req.URL, c.W.Body.String())
	}
	return req
}

func (c *APITestClient) GetResource(name string) any {
	if v, ok := c.Resources[name]; ok {
		return v
	}
	return nil
}

func (c *APITestClient) SaveResourceFromJSON(field string, name string) {
	jsonObject, _ := c.GetJSONField(field)
	c.Resources[name] = jsonObject
	slog.Debug(fmt.Sprintf("Saved resource %s at: %v (type: %T)", name, c.Resources[name], c.Resources[name]))
}

// assertMessage checks the message of the last response.
func (c *APITestClient) assertMessage(want string) {
	got, err := c.GetJSONFieldAsString("message")
	assert.NoError(c.testState, err)
	assert.Equal(c.testState, want, got)
}

// register creates a user and saves its id and tokens as
// <username>.id, <username>.access and <username>.refresh.
func (c *APITestClient) register(name, username, password, role string) {
	c.Request(ht.RegisterUser(name, username, username+"@example.com", password, role), http.StatusCreated)
	c.SaveResourceFromJSON("user.id", username+".id")
	c.SaveResourceFromJSON("accessToken", username+".access")
	c.SaveResourceFromJSON("refreshToken", username+".refresh")
}

func (c *APITestClient) token(username string) string {
	tok, _ := c.GetResource(username + ".access").(string)
	return tok
}

func (c *APITestClient) userID(username string) int64 {
	id, _ := c.GetResource(username + ".id").(int64)
	return id
}
