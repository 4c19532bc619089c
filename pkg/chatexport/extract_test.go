package chatexport

import (
	"encoding/json"
	"testing"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// textMessage builds a message whose parts are plain strings
func textMessage(role string, ts float64, parts ...string) *Message {
	raw := make([]json.RawMessage, 0, len(parts))
	for _, p := range parts {
		b, _ := json.Marshal(p)
		raw = append(raw, b)
	}
	return &Message{
		Author:     Author{Role: role},
		CreateTime: floatPtr(ts),
		Content:    &Content{ContentType: "text", Parts: raw},
	}
}

// chain builds a linear conversation where each message is the parent of the next
func chain(id string, messages ...*Message) Conversation {
	conv := Conversation{ID: id, Mapping: make(map[string]Node)}
	var parent *string
	for i, m := range messages {
		nodeID := id + "-" + string(rune('a'+i))
		conv.Mapping[nodeID] = Node{ID: nodeID, Message: m, Parent: parent}
		parent = strPtr(nodeID)
	}
	conv.CurrentNode = parent
	return conv
}

func TestExtract_EmptyInputs(t *testing.T) {
	tests := []struct {
		name string
		conv *Conversation
	}{
		{name: "nil conversation", conv: nil},
		{name: "no current node", conv: &Conversation{Mapping: map[string]Node{"a": {ID: "a"}}}},
		{name: "empty current node", conv: &Conversation{CurrentNode: strPtr(""), Mapping: map[string]Node{"a": {ID: "a"}}}},
		{name: "empty mapping", conv: &Conversation{CurrentNode: strPtr("a")}},
		{name: "current node missing from mapping", conv: &Conversation{CurrentNode: strPtr("zz"), Mapping: map[string]Node{"a": {ID: "a"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.conv); len(got) != 0 {
				t.Errorf("Extract() = %v, want empty", got)
			}
		})
	}
}

func TestExtract_DropsHiddenSystemMessage(t *testing.T) {
	conv := chain("c",
		textMessage(RoleSystem, 100, "You are a helpful assistant"),
		textMessage(RoleUser, 200, "hello there"),
		textMessage(RoleAssistant, 300, "hi, how can I help"),
	)

	got := Extract(&conv)
	if len(got) != 2 {
		t.Fatalf("Extract() returned %d messages, want 2", len(got))
	}
	if got[0].Author != AuthorUser {
		t.Errorf("first author = %q, want %q", got[0].Author, AuthorUser)
	}
	if got[1].Author != AuthorChatGPT {
		t.Errorf("second author = %q, want %q", got[1].Author, AuthorChatGPT)
	}
	if tp, ok := got[0].Parts[0].(TextPart); !ok || tp.Text != "hello there" {
		t.Errorf("first part = %#v, want TextPart 'hello there'", got[0].Parts[0])
	}
}

func TestExtract_AuthorNormalization(t *testing.T) {
	userSystem := textMessage(RoleSystem, 50, "I am a gardener")
	userSystem.Metadata.IsUserSystemMessage = true

	conv := chain("c",
		userSystem,
		textMessage(RoleUser, 100, "question"),
		textMessage(RoleTool, 150, "tool output"),
		textMessage(RoleAssistant, 200, "answer"),
		textMessage("critic", 250, "passthrough"),
	)

	got := Extract(&conv)
	want := []string{AuthorCustomUserInfo, AuthorUser, AuthorChatGPT, AuthorChatGPT, "critic"}
	if len(got) != len(want) {
		t.Fatalf("Extract() returned %d messages, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Author != w {
			t.Errorf("message %d author = %q, want %q", i, got[i].Author, w)
		}
	}
}

func TestExtract_ChronologicalOrder(t *testing.T) {
	conv := chain("c",
		textMessage(RoleUser, 10, "one"),
		textMessage(RoleAssistant, 20, "two"),
		textMessage(RoleUser, 30, "three"),
		textMessage(RoleAssistant, 40, "four"),
	)

	got := Extract(&conv)
	if len(got) != 4 {
		t.Fatalf("Extract() returned %d messages, want 4", len(got))
	}
	for i := 1; i < len(got); i++ {
		if *got[i].Timestamp < *got[i-1].Timestamp {
			t.Errorf("timestamps out of order at %d: %v < %v", i, *got[i].Timestamp, *got[i-1].Timestamp)
		}
	}
	if tp := got[0].Parts[0].(TextPart); tp.Text != "one" {
		t.Errorf("first text = %q, want 'one'", tp.Text)
	}
}

func TestExtract_SkipsUnusableContent(t *testing.T) {
	code := textMessage(RoleAssistant, 20, "print(1)")
	code.Content.ContentType = "code"

	empty := textMessage(RoleUser, 30)

	blank := textMessage(RoleUser, 40, "")

	conv := chain("c",
		textMessage(RoleUser, 10, "kept"),
		code,
		empty,
		blank,
		&Message{Author: Author{Role: RoleUser}},
	)

	got := Extract(&conv)
	if len(got) != 1 {
		t.Fatalf("Extract() returned %d messages, want 1: %+v", len(got), got)
	}
	for _, m := range got {
		if len(m.Parts) == 0 {
			t.Error("extracted message has no parts")
		}
	}
}

func TestExtract_MultimodalParts(t *testing.T) {
	parts := []json.RawMessage{
		json.RawMessage(`"look at this"`),
		json.RawMessage(`{"content_type":"image_asset_pointer","asset_pointer":"file-service://img"}`),
		json.RawMessage(`{"content_type":"audio_transcription","text":"spoken words"}`),
		json.RawMessage(`{"content_type":"real_time_user_audio_video_asset_pointer",
			"audio_asset_pointer":{"asset_pointer":"sediment://audio"},
			"video_container_asset_pointer":null,
			"frames_asset_pointers":[{"asset_pointer":"sediment://f1"},{"asset_pointer":"sediment://f2"}]}`),
		json.RawMessage(`{"content_type":"unknown_thing"}`),
		json.RawMessage(`42`),
	}
	msg := &Message{
		Author:     Author{Role: RoleUser},
		CreateTime: floatPtr(100),
		Content:    &Content{ContentType: "multimodal_text", Parts: parts},
	}
	conv := chain("c", msg)

	got := Extract(&conv)
	if len(got) != 1 {
		t.Fatalf("Extract() returned %d messages, want 1", len(got))
	}

	var texts, transcripts, assets int
	for _, p := range got[0].Parts {
		switch v := p.(type) {
		case TextPart:
			texts++
		case TranscriptPart:
			transcripts++
			if v.Transcript != "spoken words" {
				t.Errorf("transcript = %q, want 'spoken words'", v.Transcript)
			}
		case AssetPart:
			assets++
		}
	}

	if texts != 1 || transcripts != 1 || assets != 4 {
		t.Errorf("parts = %d text, %d transcript, %d asset; want 1, 1, 4", texts, transcripts, assets)
	}
}

func TestExtract_CyclicParentChain(t *testing.T) {
	conv := Conversation{
		ID:          "loop",
		CurrentNode: strPtr("b"),
		Mapping: map[string]Node{
			"a": {ID: "a", Message: textMessage(RoleUser, 1, "first"), Parent: strPtr("b")},
			"b": {ID: "b", Message: textMessage(RoleAssistant, 2, "second"), Parent: strPtr("a")},
		},
	}

	got := Extract(&conv)
	if len(got) != 2 {
		t.Fatalf("Extract() returned %d messages, want 2", len(got))
	}
}

func TestExtract_SampleArchive(t *testing.T) {
	conversations, err := ParseFile("testdata/conversations.json")
	if err != nil {
		t.Fatal(err)
	}

	total := 0
	for i := range conversations {
		msgs := Extract(&conversations[i])
		if len(msgs) != 2 {
			t.Errorf("conversation %s: got %d messages, want 2", conversations[i].ID, len(msgs))
			continue
		}
		if msgs[0].Author != AuthorUser || msgs[1].Author != AuthorChatGPT {
			t.Errorf("conversation %s: authors = %q, %q", conversations[i].ID, msgs[0].Author, msgs[1].Author)
		}
		total += len(msgs)
	}

	if total != 4 {
		t.Errorf("total messages = %d, want 4", total)
	}
}

func TestExtractedMessage_JSON(t *testing.T) {
	msg := ExtractedMessage{
		Author: AuthorUser,
		Parts:  []Part{TextPart{Text: "hi"}, TranscriptPart{Transcript: "said"}},
	}

	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}

	want := `{"author":"user","parts":[{"text":"hi"},{"transcript":"said"}],"timestamp":null}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}
}
