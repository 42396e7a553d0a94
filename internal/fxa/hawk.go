package fxa

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// hawkRequest holds the parts of a request covered by a Hawk MAC.
type hawkRequest struct {
	Method      string
	Host        string
	Port        string
	Resource    string
	ContentType string
	Payload     []byte
	Timestamp   time.Time
	Nonce       string
}

func newHawkRequest(req *http.Request, body []byte, ts time.Time, nonce string) hawkRequest {
	host, port, err := net.SplitHostPort(req.URL.Host)
	if err != nil {
		host = req.URL.Host
		port = "80"
		if req.URL.Scheme == "https" {
			port = "443"
		}
	}
	contentType, _, _ := strings.Cut(req.Header.Get("Content-Type"), ";")
	return hawkRequest{
		Method:      strings.ToUpper(req.Method),
		Host:        strings.ToLower(host),
		Port:        port,
		Resource:    req.URL.RequestURI(),
		ContentType: strings.TrimSpace(strings.ToLower(contentType)),
		Payload:     body,
		Timestamp:   ts,
		Nonce:       nonce,
	}
}

func (h hawkRequest) payloadHash() string {
	sum := sha256.New()
	fmt.Fprintf(sum, "hawk.1.payload\n%s\n", h.ContentType)
	sum.Write(h.Payload)
	sum.Write([]byte("\n"))
	return base64.StdEncoding.EncodeToString(sum.Sum(nil))
}

func (h hawkRequest) normalized(hash string) string {
	return strings.Join([]string{
		"hawk.1.header",
		strconv.FormatInt(h.Timestamp.Unix(), 10),
		h.Nonce,
		h.Method,
		h.Resource,
		h.Host,
		h.Port,
		hash,
		"", // ext
	}, "\n") + "\n"
}

func (h hawkRequest) mac(key []byte, hash string) string {
	m := hmac.New(sha256.New, key)
	m.Write([]byte(h.normalized(hash)))
	return base64.StdEncoding.EncodeToString(m.Sum(nil))
}

// header returns the Authorization header value for the given credentials.
func (h hawkRequest) header(creds *tokenCredentials) string {
	hash := h.payloadHash()
	return fmt.Sprintf(`Hawk id="%s", ts="%d", nonce="%s", hash="%s", mac="%s"`,
		creds.ID, h.Timestamp.Unix(), h.Nonce, hash, h.mac(creds.Key, hash))
}
