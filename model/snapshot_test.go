package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSnapshot_Result_JSONShape(t *testing.T) {
	res := Record{
		Digest: "d3626ac30a87e6f7a6428233b3c68299976865fa5508e4267c5415c76af7a772",
		Metadata: Metadata{
			FormID:     "1FAIpQLSf",
			ResponseID: "ACYDBNj",
			Timestamp:  "2024-03-01T10:20:30Z",
		},
		StoredAt: "2024-03-01T10:20:31.5Z",
	}.Result("Digest verified: registered on the ledger")

	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent failed: %v", err)
	}

	const want = "{\n" +
		"  \"verified\": true,\n" +
		"  \"message\": \"Digest verified: registered on the ledger\",\n" +
		"  \"metadata\": {\n" +
		"    \"formId\": \"1FAIpQLSf\",\n" +
		"    \"responseId\": \"ACYDBNj\",\n" +
		"    \"timestamp\": \"2024-03-01T10:20:30Z\"\n" +
		"  },\n" +
		"  \"storedAt\": \"2024-03-01T10:20:31.5Z\"\n" +
		"}"
	if string(b) != want {
		t.Fatalf("unexpected JSON shape:\n%s", string(b))
	}
}

func TestSnapshot_NotVerified_OmitsOptionalFields(t *testing.T) {
	b, err := json.Marshal(Result{Verified: false, Message: "Digest not found on the ledger"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	const want = `{"verified":false,"message":"Digest not found on the ledger"}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
}

func TestVerifyRequest_AcceptsLegacyHashField(t *testing.T) {
	var req VerifyRequest
	if err := json.Unmarshal([]byte(`{"hash":"abc"}`), &req); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got := req.DigestValue(); got != "abc" {
		t.Fatalf("DigestValue: got %q want %q", got, "abc")
	}

	req = VerifyRequest{Digest: "new", Hash: "old"}
	if got := req.DigestValue(); got != "new" {
		t.Fatalf("DigestValue: got %q want %q", got, "new")
	}

	b, _ := json.Marshal(VerifyRequest{Digest: "d"})
	if string(b) != `{"digest":"d"}` {
		t.Fatalf("request payload: %s", b)
	}
}

func TestTimes(t *testing.T) {
	md := Metadata{Timestamp: "2024-03-01T10:20:30+02:00"}
	got, err := md.Time()
	if err != nil {
		t.Fatalf("Time: %v", err)
	}
	if !got.Equal(time.Date(2024, 3, 1, 8, 20, 30, 0, time.UTC)) {
		t.Fatalf("Time: got %s", got)
	}

	if _, ok, err := (Result{}).StoredTime(); ok || err != nil {
		t.Fatalf("StoredTime on empty: ok=%v err=%v", ok, err)
	}
	if _, ok, err := (Result{StoredAt: "yesterday"}).StoredTime(); ok || err == nil {
		t.Fatalf("StoredTime on garbage: ok=%v err=%v", ok, err)
	}
}

func TestCodedError(t *testing.T) {
	err := NewError(ErrInvalidDigest, "bad digest")
	if err.Error() != "INVALID_DIGEST: bad digest" {
		t.Fatalf("Error(): %q", err.Error())
	}
	b, _ := json.Marshal(err)
	if string(b) != `{"code":"INVALID_DIGEST","error":"bad digest"}` {
		t.Fatalf("JSON: %s", b)
	}
}
