package testutil

import (
	"os"
	"testing"
)

const DefaultHealthCheckTimeout = 30 * ConnectionTimeout

// TestEnv describes a running service plus the Mongo instance behind it.
// Suites construct one via NewTestEnv with the env var naming their target
// service, so each suite can be pointed at its own deployment.
type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
}

// NewTestEnv skips the calling test unless serverURLVar is set. Integration
// suites are opt-in: without a running stack they stay out of the way.
func NewTestEnv(t *testing.T, serverURLVar string) *TestEnv {
	t.Helper()

	serverURL := os.Getenv(serverURLVar)
	if serverURL == "" {
		t.Skipf("%s not set, skipping integration tests", serverURLVar)
	}

	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ServerURL:    serverURL,
	}
}

// Setup connects to Mongo, clears the domain collections and waits for the
// service to report healthy.
func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Client) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanCollection(t, BookingsCollection)
	mongo.CleanCollection(t, ListingsCollection)

	client := NewClient(e.ServerURL)
	client.WaitForHealthy(t, DefaultHealthCheckTimeout)

	return mongo, client
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
