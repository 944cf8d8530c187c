package store

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestImage_DataURL(t *testing.T) {
	img := Image{MediaType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
	if got := img.DataURL(); got != "data:image/png;base64,iVBORw==" {
		t.Errorf("DataURL() = %q", got)
	}
}

func TestConversation_DecodeWithoutMessages(t *testing.T) {
	var c Conversation
	if err := json.Unmarshal([]byte(`{"_id":"c1","title":"T"}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.ID != "c1" || c.Messages != nil {
		t.Errorf("decoded %+v", c)
	}
}

func TestMessage_OmitsZeroTimestamp(t *testing.T) {
	data, err := json.Marshal(Message{Text: "hi", Sender: SenderBot})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "timeStamp") {
		t.Errorf("zero timestamp should be omitted: %s", data)
	}

	data, err = json.Marshal(Message{Text: "hi", Sender: SenderUser, TimeStamp: time.Unix(0, 0).UTC()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"timeStamp":"1970-01-01T00:00:00Z"`) {
		t.Errorf("unexpected encoding: %s", data)
	}
}
