package awscred

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"
)

func signingFixture() SigningInput {
	u, _ := url.Parse("https://bedrock-runtime.us-east-1.amazonaws.com/model/anthropic.claude-3-5-haiku-20241022-v1:0/converse")
	return SigningInput{
		Method:  "POST",
		URL:     u,
		Headers: http.Header{"Content-Type": []string{"application/json"}},
		Body:    []byte(`{"messages":[]}`),
		Credentials: Credentials{
			AccessKeyID:     "AKIDEXAMPLE",
			SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		},
		Region:  "us-east-1",
		Service: "bedrock",
		Time:    time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func TestSignV4_Deterministic(t *testing.T) {
	in := signingFixture()
	first := SignV4(in)
	second := SignV4(in)

	for _, header := range []string{"Authorization", "X-Amz-Date", "X-Amz-Content-Sha256", "Host"} {
		if first.Get(header) == "" {
			t.Fatalf("header %s missing from signed output", header)
		}
		if first.Get(header) != second.Get(header) {
			t.Errorf("header %s differs between identical signings: %q vs %q",
				header, first.Get(header), second.Get(header))
		}
	}
}

func TestSignV4_InputSensitivity(t *testing.T) {
	base := SignV4(signingFixture()).Get("Authorization")

	changed := signingFixture()
	changed.Headers.Set("Content-Type", "text/plain")
	if sig := SignV4(changed).Get("Authorization"); sig == base {
		t.Error("changing a signed header value did not change the signature")
	}

	changed = signingFixture()
	changed.Body = []byte(`{"messages":[{}]}`)
	if sig := SignV4(changed).Get("Authorization"); sig == base {
		t.Error("changing the body did not change the signature")
	}

	changed = signingFixture()
	changed.Time = changed.Time.Add(time.Second)
	if sig := SignV4(changed).Get("Authorization"); sig == base {
		t.Error("changing the timestamp did not change the signature")
	}

	changed = signingFixture()
	changed.Region = "eu-west-1"
	if sig := SignV4(changed).Get("Authorization"); sig == base {
		t.Error("changing the region did not change the signature")
	}
}

func TestSignV4_AuthorizationShape(t *testing.T) {
	signed := SignV4(signingFixture())
	auth := signed.Get("Authorization")

	if !strings.HasPrefix(auth, "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20250314/us-east-1/bedrock/aws4_request") {
		t.Errorf("unexpected Authorization prefix: %s", auth)
	}
	if !strings.Contains(auth, "SignedHeaders=") || !strings.Contains(auth, "Signature=") {
		t.Errorf("Authorization missing components: %s", auth)
	}
	if signed.Get("X-Amz-Date") != "20250314T092653Z" {
		t.Errorf("unexpected X-Amz-Date: %s", signed.Get("X-Amz-Date"))
	}
}

func TestSignV4_SessionTokenIsSigned(t *testing.T) {
	in := signingFixture()
	in.Credentials.SessionToken = "FwoGZXIvYXdzEXAMPLETOKEN"
	signed := SignV4(in)

	if signed.Get("X-Amz-Security-Token") != in.Credentials.SessionToken {
		t.Fatal("session token header not set")
	}
	auth := signed.Get("Authorization")
	if !strings.Contains(auth, "x-amz-security-token") {
		t.Errorf("session token not in signed headers: %s", auth)
	}

	// Presence of the token must change the signature too.
	without := SignV4(signingFixture()).Get("Authorization")
	if auth == without {
		t.Error("adding a session token did not change the signature")
	}
}

func TestSignV4_DoesNotMutateInput(t *testing.T) {
	in := signingFixture()
	in.Headers.Set("X-Custom", "value")
	before := len(in.Headers)

	SignV4(in)

	if len(in.Headers) != before {
		t.Errorf("input headers mutated: %d headers, expected %d", len(in.Headers), before)
	}
	if in.Headers.Get("Authorization") != "" {
		t.Error("Authorization leaked into input headers")
	}
}

func TestSignV4_QueryCanonicalization(t *testing.T) {
	a := signingFixture()
	a.URL, _ = url.Parse("https://example.amazonaws.com/path?b=2&a=1")
	b := signingFixture()
	b.URL, _ = url.Parse("https://example.amazonaws.com/path?a=1&b=2")

	if SignV4(a).Get("Authorization") != SignV4(b).Get("Authorization") {
		t.Error("query parameter order affected the signature")
	}
}
