package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/anonto42/wingit/backend/internal/testutil"
)

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(app *testutil.App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func path(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
