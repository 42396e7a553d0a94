package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jrschumacher/fxa-oauth/internal/browserid"
	"github.com/jrschumacher/fxa-oauth/internal/clierr"
	"github.com/jrschumacher/fxa-oauth/internal/httputil"
	"github.com/jrschumacher/fxa-oauth/internal/oauth"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionToken = "a0a1a2a3a4a5a6a7a8a9aaabacadaeafb0b1b2b3b4b5b6b7b8b9babbbcbdbebf"

// fakeServices serves both the identity and the OAuth routes.
type fakeServices struct {
	t           *testing.T
	issuer      *browserid.KeyPair
	rejectLogin bool

	clients    map[string]oauth.Client
	assertions []string
	destroyed  []string
	updates    []map[string]any
}

func newFakeServices(t *testing.T) (*fakeServices, *httptest.Server) {
	t.Helper()
	issuer, err := browserid.GenerateKeyPair(context.Background(), browserid.DefaultKeyParams)
	require.NoError(t, err)

	f := &fakeServices{t: t, issuer: issuer, clients: map[string]oauth.Client{
		"dcdb5ae7add825d2": {ID: "dcdb5ae7add825d2", Name: "123done", RedirectURI: "http://127.0.0.1:8080/api/oauth"},
	}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/account/login", func(w http.ResponseWriter, _ *http.Request) {
		if f.rejectLogin {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"code":400,"errno":103,"message":"Incorrect password","info":"%s"}`, httputil.AuthErrorInfo)
			return
		}
		fmt.Fprintf(w, `{"uid":"u1","sessionToken":"%s","verified":true,"authAt":1}`, testSessionToken)
	})
	mux.HandleFunc("POST /v1/certificate/sign", func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Hawk "))
		var req struct {
			PublicKey browserid.PublicKeyObject `json:"publicKey"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		cert, err := browserid.SignAssertion(
			map[string]any{"public-key": req.PublicKey, "principal": map[string]any{"email": "u1@fake"}},
			browserid.AssertionParams{Audience: "certificate", Issuer: "fake", ExpiresAt: time.Now().Add(time.Hour)},
			f.issuer.Private,
		)
		require.NoError(t, err)
		fmt.Fprintf(w, `{"cert":"%s"}`, cert)
	})
	mux.HandleFunc("POST /v1/authorization", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.assertions = append(f.assertions, req["assertion"])
		fmt.Fprintf(w, `{"access_token":"tok-%s","token_type":"bearer","scope":"%s"}`, req["client_id"], req["scope"])
	})
	mux.HandleFunc("POST /v1/destroy", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.destroyed = append(f.destroyed, req["token"])
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("GET /v1/clients", func(w http.ResponseWriter, _ *http.Request) {
		list := struct {
			Clients []oauth.Client `json:"clients"`
		}{}
		for _, c := range f.clients {
			list.Clients = append(list.Clients, c)
		}
		_ = json.NewEncoder(w).Encode(list)
	})
	mux.HandleFunc("GET /v1/client/{id}", func(w http.ResponseWriter, r *http.Request) {
		c, ok := f.clients[r.PathValue("id")]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"code":400,"errno":101,"message":"Unknown client","info":"%s"}`, httputil.OAuthErrorInfo)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	})
	mux.HandleFunc("POST /v1/client", func(w http.ResponseWriter, r *http.Request) {
		var c oauth.Client
		require.NoError(t, json.NewDecoder(r.Body).Decode(&c))
		c.ID = "0123456789abcdef"
		c.Secret = "s3cr3t"
		f.clients[c.ID] = c
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(c)
	})
	mux.HandleFunc("POST /v1/client/{id}", func(w http.ResponseWriter, r *http.Request) {
		var props map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&props))
		f.updates = append(f.updates, props)
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("DELETE /v1/client/{id}", func(w http.ResponseWriter, r *http.Request) {
		delete(f.clients, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

// resetFlags restores every flag to its default so runs do not leak into
// each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI against srv in a scratch directory.
func execute(t *testing.T, srv *httptest.Server, stdin string, args ...string) (int, string) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("FXA_USER", "admin@example.com")
	t.Setenv("FXA_PASSWORD", "hunter2")

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--url", srv.URL, "--fxa", srv.URL, "-q"}, args...))

	code := run(context.Background())
	return code, out.String()
}

func TestTokenCommand(t *testing.T) {
	f, srv := newFakeServices(t)

	code, out := execute(t, srv, "", "token", "dcdb5ae7add825d2", "profile")
	require.Equal(t, clierr.ExitSuccess, code)
	assert.Equal(t, "token: tok-dcdb5ae7add825d2\n", out)

	require.Len(t, f.assertions, 1)
	bundle, err := browserid.ParseBundle(f.assertions[0])
	require.NoError(t, err)
	claims, err := browserid.ParseClaims(bundle.Assertion)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, claims.Audience)
	assert.Empty(t, f.destroyed, "a requested token is handed to the user, not destroyed")
}

func TestTokenCommandMissingScope(t *testing.T) {
	_, srv := newFakeServices(t)
	code, _ := execute(t, srv, "", "token", "dcdb5ae7add825d2")
	assert.Equal(t, clierr.ExitUsage, code)
}

func TestTokenCommandAuthFailureWritesDebugLog(t *testing.T) {
	f, srv := newFakeServices(t)
	f.rejectLogin = true

	code, out := execute(t, srv, "", "token", "dcdb5ae7add825d2", "profile")
	assert.Equal(t, clierr.ExitGeneral, code)
	assert.Empty(t, out)

	_, err := os.Stat("fxa-debug.log")
	assert.NoError(t, err)
}

func TestClientsCommandJSON(t *testing.T) {
	f, srv := newFakeServices(t)

	code, out := execute(t, srv, "", "clients", "-o", "json")
	require.Equal(t, clierr.ExitSuccess, code)

	var clients []oauth.Client
	require.NoError(t, json.Unmarshal([]byte(out), &clients))
	require.Len(t, clients, 1)
	assert.Equal(t, "123done", clients[0].Name)
	assert.Equal(t, []string{"tok-66041b7ec3991ec0"}, f.destroyed)
}

func TestRegisterCommand(t *testing.T) {
	f, srv := newFakeServices(t)

	code, out := execute(t, srv, "", "register", "-y",
		"--name", "Test", "--redirect-uri", "https://example.com/cb", "--whitelisted", "no", "--can-grant", "yes")
	require.Equal(t, clierr.ExitSuccess, code)
	assert.Contains(t, out, "id: 0123456789abcdef")
	assert.Contains(t, out, "secret: s3cr3t")

	c := f.clients["0123456789abcdef"]
	require.NotNil(t, c.Whitelisted)
	require.NotNil(t, c.CanGrant)
	assert.False(t, *c.Whitelisted)
	assert.True(t, *c.CanGrant)
	assert.Len(t, f.destroyed, 1)
}

func TestRegisterCommandPrompts(t *testing.T) {
	f, srv := newFakeServices(t)

	// name, redirect uri, image uri, whitelisted, can grant, confirm
	input := "Prompted\nhttps://example.com/cb\n\n\n\ny\n"
	code, _ := execute(t, srv, input, "register")
	require.Equal(t, clierr.ExitSuccess, code)

	c := f.clients["0123456789abcdef"]
	assert.Equal(t, "Prompted", c.Name)
	require.NotNil(t, c.Whitelisted)
	assert.True(t, *c.Whitelisted)
	require.NotNil(t, c.CanGrant)
	assert.False(t, *c.CanGrant)
}

func TestRegisterCommandInvalid(t *testing.T) {
	f, srv := newFakeServices(t)

	code, _ := execute(t, srv, "", "register", "-y", "--name", "Test", "--redirect-uri", "not a url")
	assert.Equal(t, clierr.ExitUsage, code)
	assert.Empty(t, f.assertions, "nothing is sent for invalid input")
}

func TestUpdateCommand(t *testing.T) {
	f, srv := newFakeServices(t)

	code, _ := execute(t, srv, "", "update", "dcdb5ae7add825d2", "can_grant", "true")
	require.Equal(t, clierr.ExitSuccess, code)
	assert.Equal(t, []map[string]any{{"can_grant": true}}, f.updates)
	assert.Len(t, f.destroyed, 1)
}

func TestUpdateCommandRejectsUnknownProperty(t *testing.T) {
	f, srv := newFakeServices(t)

	code, _ := execute(t, srv, "", "update", "dcdb5ae7add825d2", "secret", "x")
	assert.Equal(t, clierr.ExitUsage, code)
	assert.Empty(t, f.assertions)
}

func TestDeleteCommand(t *testing.T) {
	f, srv := newFakeServices(t)

	code, _ := execute(t, srv, "", "delete", "-y", "dcdb5ae7add825d2")
	require.Equal(t, clierr.ExitSuccess, code)
	assert.NotContains(t, f.clients, "dcdb5ae7add825d2")
	assert.Len(t, f.destroyed, 1)
}

func TestDeleteCommandDeclined(t *testing.T) {
	f, srv := newFakeServices(t)

	code, _ := execute(t, srv, "n\n", "delete", "dcdb5ae7add825d2")
	require.Equal(t, clierr.ExitSuccess, code)
	assert.Contains(t, f.clients, "dcdb5ae7add825d2")
	assert.Len(t, f.destroyed, 1, "the temporary token is destroyed even when nothing is deleted")
}

func TestDeleteCommandUnknownClient(t *testing.T) {
	f, srv := newFakeServices(t)

	code, _ := execute(t, srv, "", "delete", "-y", "ffffffffffffffff")
	assert.Equal(t, clierr.ExitGeneral, code)
	assert.Len(t, f.destroyed, 1)
}

func TestUtilAssertionCommand(t *testing.T) {
	_, srv := newFakeServices(t)

	code, out := execute(t, srv, "", "util", "assertion", "--audience", "https://relier.example.com:8443/path")
	require.Equal(t, clierr.ExitSuccess, code)

	var dump assertionDump
	require.NoError(t, json.Unmarshal([]byte(out), &dump))
	require.Len(t, dump.Certificates, 1)
	assert.Equal(t, "fake", dump.Certificates[0].Issuer)
	assert.Equal(t, "https://relier.example.com:8443", dump.Assertion.Audience)
}

func TestUtilKeypairCommand(t *testing.T) {
	_, srv := newFakeServices(t)

	code, out := execute(t, srv, "", "util", "keypair")
	require.Equal(t, clierr.ExitSuccess, code)

	var obj browserid.PublicKeyObject
	require.NoError(t, json.Unmarshal([]byte(out), &obj))
	assert.Equal(t, browserid.AlgorithmDS, obj.Algorithm)
	_, err := browserid.ParsePublicKey(obj)
	assert.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	_, srv := newFakeServices(t)

	code, out := execute(t, srv, "", "version")
	require.Equal(t, clierr.ExitSuccess, code)
	assert.NotEmpty(t, strings.TrimSpace(out))
}
