package azdo

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/azdash-dev/azdash/pkg/internal/testutil"
)

func newTestClient(doer *testutil.MockHTTPDoer) *Client {
	return New(Config{
		Organization: "contoso",
		Credential:   "pat-one",
		HTTPClient:   doer,
	})
}

func TestBasicAuthHeader(t *testing.T) {
	doer := testutil.NewMockHTTPDoer()
	url := "https://dev.azure.com/contoso/ProjA/_apis/git/pullrequests?searchCriteria.status=active&api-version=7.0"
	doer.SetResponse("GET", url, http.StatusOK, testutil.Envelope())

	client := newTestClient(doer)
	if _, err := client.ActivePullRequests(context.Background(), "ProjA", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := doer.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte(":pat-one"))
	if calls[0].Auth != want {
		t.Errorf("expected auth header %q, got %q", want, calls[0].Auth)
	}
}

func TestSetCredentialAffectsSubsequentCalls(t *testing.T) {
	doer := testutil.NewMockHTTPDoer()
	url := "https://dev.azure.com/contoso/ProjA/_apis/git/pullrequests?searchCriteria.status=active&api-version=7.0"
	doer.SetResponse("GET", url, http.StatusOK, testutil.Envelope())

	client := newTestClient(doer)
	ctx := context.Background()
	if _, err := client.ActivePullRequests(ctx, "ProjA", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client.SetCredential("pat-two")
	if _, err := client.ActivePullRequests(ctx, "ProjA", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := doer.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte(":pat-two"))
	if calls[1].Auth != want {
		t.Errorf("expected second call to use the new credential, got %q", calls[1].Auth)
	}
}

func TestFailureClassification(t *testing.T) {
	url := "https://dev.azure.com/contoso/ProjA/_apis/git/pullrequests?searchCriteria.status=active&api-version=7.0"

	tests := []struct {
		transportErr error
		name         string
		wantKind     Kind
		status       int
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, wantKind: AuthInvalid},
		{name: "forbidden", status: http.StatusForbidden, wantKind: AuthForbidden},
		{name: "network failure", transportErr: errors.New("connection refused"), wantKind: NetworkUnavailable},
		{name: "server error", status: http.StatusInternalServerError, wantKind: UpstreamError},
		{name: "not found", status: http.StatusNotFound, wantKind: UpstreamError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doer := testutil.NewMockHTTPDoer()
			if tt.transportErr != nil {
				doer.SetError("GET", url, tt.transportErr)
			} else {
				doer.SetRawResponse("GET", url, tt.status, `{"message":"nope"}`)
			}

			client := newTestClient(doer)
			notifications := client.Notifications().Subscribe()
			defer client.Notifications().Unsubscribe(notifications)

			prs, err := client.ActivePullRequests(context.Background(), "ProjA", "")
			if err == nil {
				t.Fatal("expected an error")
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if apiErr.Kind != tt.wantKind {
				t.Errorf("expected kind %q, got %q", tt.wantKind, apiErr.Kind)
			}
			if prs != nil {
				t.Errorf("expected zero value on failure, got %v", prs)
			}

			select {
			case published := <-notifications:
				if published.Kind != tt.wantKind {
					t.Errorf("notification kind %q, want %q", published.Kind, tt.wantKind)
				}
				if published.Operation != "listActivePullRequests" {
					t.Errorf("notification operation %q", published.Operation)
				}
			default:
				t.Error("expected the failure on the notification stream")
			}
		})
	}
}

func TestMalformedResponseIsNotClassified(t *testing.T) {
	doer := testutil.NewMockHTTPDoer()
	url := "https://dev.azure.com/contoso/ProjA/_apis/git/pullrequests?searchCriteria.status=active&api-version=7.0"
	doer.SetRawResponse("GET", url, http.StatusOK, `{"count": "not-a-number"`)

	client := newTestClient(doer)
	notifications := client.Notifications().Subscribe()
	defer client.Notifications().Unsubscribe(notifications)

	_, err := client.ActivePullRequests(context.Background(), "ProjA", "")
	if err == nil {
		t.Fatal("expected a decode error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatal("contract breaks must surface as hard failures, not classified outages")
	}
	select {
	case <-notifications:
		t.Error("decode failures must not hit the notification stream")
	default:
	}
}

func TestRepositorySelectorScopesURL(t *testing.T) {
	doer := testutil.NewMockHTTPDoer()
	url := "https://dev.azure.com/contoso/ProjA/_apis/git/repositories/web-app/pullrequests?searchCriteria.status=active&api-version=7.0"
	doer.SetResponse("GET", url, http.StatusOK, testutil.Envelope())

	client := newTestClient(doer)
	if _, err := client.ActivePullRequests(context.Background(), "ProjA", "web-app"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doer.CallCount("GET", url) != 1 {
		t.Errorf("expected the repository-scoped endpoint to be called, saw %v", doer.Calls())
	}
}

func TestRepositoriesCached(t *testing.T) {
	doer := testutil.NewMockHTTPDoer()
	url := "https://dev.azure.com/contoso/ProjA/_apis/git/repositories?api-version=7.0"
	doer.SetRawResponse("GET", url, http.StatusOK, `{"count":1,"value":[{"id":"r1","name":"web-app"}]}`)

	client := newTestClient(doer)
	ctx := context.Background()
	for range 3 {
		repos, err := client.Repositories(ctx, "ProjA")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(repos) != 1 || repos[0].ID != "r1" {
			t.Fatalf("unexpected repositories: %v", repos)
		}
	}
	if got := doer.CallCount("GET", url); got != 1 {
		t.Errorf("expected 1 upstream call thanks to caching, got %d", got)
	}
}
