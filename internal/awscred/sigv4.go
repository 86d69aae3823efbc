package awscred

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const signingAlgorithm = "AWS4-HMAC-SHA256"

// SigningInput carries everything SignV4 needs. Time is injected so signing
// is deterministic; production callers pass time.Now().
type SigningInput struct {
	Method      string
	URL         *url.URL
	Headers     http.Header
	Body        []byte
	Credentials Credentials
	Region      string
	Service     string
	Time        time.Time
}

// SignV4 computes an AWS Signature Version 4 over the request and returns a
// new header set containing the input headers plus Host, X-Amz-Date,
// X-Amz-Content-Sha256, X-Amz-Security-Token (when a session token is
// present) and Authorization. The input headers and credentials are not
// mutated. Callers must ensure Region and the credential key fields are
// non-empty; SignV4 itself performs no I/O and cannot fail.
func SignV4(in SigningInput) http.Header {
	signed := make(http.Header, len(in.Headers)+5)
	for k, vs := range in.Headers {
		for _, v := range vs {
			signed.Add(k, v)
		}
	}

	amzDate := in.Time.UTC().Format("20060102T150405Z")
	dateStamp := in.Time.UTC().Format("20060102")
	payloadHash := hexSHA256(in.Body)

	signed.Set("Host", in.URL.Host)
	signed.Set("X-Amz-Date", amzDate)
	signed.Set("X-Amz-Content-Sha256", payloadHash)
	// A session token must be part of the signed headers, so it is added
	// before the signature is computed.
	if in.Credentials.SessionToken != "" {
		signed.Set("X-Amz-Security-Token", in.Credentials.SessionToken)
	}

	canonicalHeaders, signedHeaderNames := canonicalizeHeaders(signed)

	canonicalRequest := strings.Join([]string{
		in.Method,
		canonicalURI(in.URL),
		canonicalQuery(in.URL),
		canonicalHeaders,
		signedHeaderNames,
		payloadHash,
	}, "\n")

	scope := strings.Join([]string{dateStamp, in.Region, in.Service, "aws4_request"}, "/")
	stringToSign := strings.Join([]string{
		signingAlgorithm,
		amzDate,
		scope,
		hexSHA256([]byte(canonicalRequest)),
	}, "\n")

	signingKey := deriveSigningKey(in.Credentials.SecretAccessKey, dateStamp, in.Region, in.Service)
	signature := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	signed.Set("Authorization", signingAlgorithm+
		" Credential="+in.Credentials.AccessKeyID+"/"+scope+
		", SignedHeaders="+signedHeaderNames+
		", Signature="+signature)
	return signed
}

// deriveSigningKey chains four HMAC-SHA256 operations over date, region,
// service and the fixed "aws4_request" terminator.
func deriveSigningKey(secretKey, dateStamp, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secretKey), dateStamp)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	return hmacSHA256(kService, "aws4_request")
}

// canonicalizeHeaders lowercases header names, trims values, sorts by name,
// and returns the canonical header block plus the semicolon-joined signed
// header list.
func canonicalizeHeaders(headers http.Header) (string, string) {
	names := make([]string, 0, len(headers))
	lowered := make(map[string][]string, len(headers))
	for name, values := range headers {
		lower := strings.ToLower(name)
		names = append(names, lower)
		trimmed := make([]string, len(values))
		for i, v := range values {
			trimmed[i] = strings.Join(strings.Fields(v), " ")
		}
		lowered[lower] = trimmed
	}
	sort.Strings(names)

	var block strings.Builder
	for _, name := range names {
		block.WriteString(name)
		block.WriteString(":")
		block.WriteString(strings.Join(lowered[name], ","))
		block.WriteString("\n")
	}
	return block.String(), strings.Join(names, ";")
}

// canonicalURI is the URI-encoded path with '/' preserved; empty paths
// canonicalize to "/".
func canonicalURI(u *url.URL) string {
	path := u.EscapedPath()
	if path == "" {
		return "/"
	}
	return path
}

// canonicalQuery sorts query parameters by key, then value, with strict
// RFC 3986 percent-encoding.
func canonicalQuery(u *url.URL) string {
	if u.RawQuery == "" {
		return ""
	}
	values, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return u.RawQuery
	}

	var pairs []string
	for key, vs := range values {
		for _, v := range vs {
			pairs = append(pairs, uriEncode(key)+"="+uriEncode(v))
		}
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}

// uriEncode percent-encodes everything except the RFC 3986 unreserved set.
func uriEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.', c == '~':
			b.WriteByte(c)
		default:
			b.WriteString("%" + strings.ToUpper(hex.EncodeToString([]byte{c})))
		}
	}
	return b.String()
}

func hexSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}
