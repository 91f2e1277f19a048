package session

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/docdb/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestyLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := restyLogger{log: logging.New(&buf, "text", "debug")}

	l.Errorf("attempt %d failed\n", 1)
	l.Warnf("slow %s", "endpoint")
	l.Debugf("dump")

	out := buf.String()
	assert.Contains(t, out, `level=ERROR msg="attempt 1 failed"`)
	assert.Contains(t, out, `level=WARN msg="slow endpoint"`)
	assert.Contains(t, out, `level=DEBUG msg=dump`)
}

func TestNewHTTPClient_FailedAttemptsGoToLogger(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	dead := srv.URL
	srv.Close()

	var buf bytes.Buffer
	c := NewHTTPClient(
		WithTransportLogger(logging.New(&buf, "text", "debug")),
		WithMaxRetries(1),
		WithRetryWait(time.Millisecond, 2*time.Millisecond),
		WithTimeout(time.Second),
	)

	_, err := c.R().Get(dead + "/x")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "component=transport")
}

