package llmclient

import (
	"encoding/json"
	"testing"
)

func TestPayloadMarshalJSONMatchesBackendWireShape(t *testing.T) {
	payload := Payload{Question: "list files"}

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	const want = `{"question":"list files","context":{"stdin":"","attachments":{"contents":"","mimetype":""}},"systeminfo":{"os":"","version":"","arch":"","id":""}}`
	if string(body) != want {
		t.Errorf("Marshal(%+v) = %s, want %s", payload, body, want)
	}
}

func TestPayloadMarshalJSONNestsAttachment(t *testing.T) {
	payload := Payload{
		Question:   "q",
		Stdin:      "s",
		Attachment: &Attachment{Contents: "c", Mimetype: "text/plain"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded struct {
		Question string `json:"question"`
		Context  struct {
			Stdin       string `json:"stdin"`
			Attachments struct {
				Contents string `json:"contents"`
				Mimetype string `json:"mimetype"`
			} `json:"attachments"`
		} `json:"context"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.Context.Stdin != "s" || decoded.Context.Attachments.Contents != "c" || decoded.Context.Attachments.Mimetype != "text/plain" {
		t.Errorf("decoded context = %+v, want stdin=s attachments={c text/plain}", decoded.Context)
	}
}
