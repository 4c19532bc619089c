package chatexport

import (
	"encoding/json"
)

// DefaultTitle is used for conversations exported without a title
const DefaultTitle = "Untitled"

// Conversation is one entry of an exported conversations.json archive
type Conversation struct {
	ID          string          `json:"id"`
	Title       *string         `json:"title"`
	CreateTime  *float64        `json:"create_time,omitempty"`
	UpdateTime  *float64        `json:"update_time,omitempty"`
	CurrentNode *string         `json:"current_node"`
	Mapping     map[string]Node `json:"mapping"`
}

// DisplayTitle returns the title, falling back to DefaultTitle when the field is absent
func (c *Conversation) DisplayTitle() string {
	if c.Title == nil {
		return DefaultTitle
	}
	return *c.Title
}

// Node is one entry of a conversation's mapping. Parent points toward the root.
type Node struct {
	ID       string   `json:"id"`
	Message  *Message `json:"message"`
	Parent   *string  `json:"parent"`
	Children []string `json:"children,omitempty"`
}

// Message is the payload of a node
type Message struct {
	ID         string          `json:"id"`
	Author     Author          `json:"author"`
	CreateTime *float64        `json:"create_time"`
	Content    *Content        `json:"content"`
	Metadata   MessageMetadata `json:"metadata"`
}

// Author identifies who produced a message
type Author struct {
	Role string `json:"role"`
}

// Roles as they appear in exports
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleSystem    = "system"
)

// Content holds the raw parts of a message. Parts are either plain strings or
// objects discriminated by their content_type.
type Content struct {
	ContentType string            `json:"content_type"`
	Parts       []json.RawMessage `json:"parts"`
}

// MessageMetadata carries the flags the extractor cares about
type MessageMetadata struct {
	IsUserSystemMessage bool `json:"is_user_system_message"`
}

// Raw part content types
const (
	PartTypeAudioTranscription       = "audio_transcription"
	PartTypeAudioAssetPointer        = "audio_asset_pointer"
	PartTypeImageAssetPointer        = "image_asset_pointer"
	PartTypeVideoContainerAsset      = "video_container_asset_pointer"
	PartTypeRealTimeAudioVideoAssets = "real_time_user_audio_video_asset_pointer"
)

// rawPart is the shape of an object part. Only the fields used during
// extraction are decoded; asset pointers are kept verbatim.
type rawPart struct {
	ContentType         string            `json:"content_type"`
	Text                string            `json:"text"`
	AudioAssetPointer   json.RawMessage   `json:"audio_asset_pointer"`
	VideoContainerAsset json.RawMessage   `json:"video_container_asset_pointer"`
	FramesAssetPointers []json.RawMessage `json:"frames_asset_pointers"`
}

// Part is one normalized piece of an extracted message: TextPart,
// TranscriptPart or AssetPart.
type Part interface {
	isPart()
}

// TextPart is a plain text part
type TextPart struct {
	Text string `json:"text"`
}

// TranscriptPart is the transcription of a voice message
type TranscriptPart struct {
	Transcript string `json:"transcript"`
}

// AssetPart references an uploaded or generated asset (image, audio, video frame)
type AssetPart struct {
	Asset json.RawMessage `json:"asset"`
}

func (TextPart) isPart()       {}
func (TranscriptPart) isPart() {}
func (AssetPart) isPart()      {}

// Normalized author labels
const (
	AuthorUser           = "user"
	AuthorChatGPT        = "ChatGPT"
	AuthorCustomUserInfo = "Custom user info"
)

// ExtractedMessage is one message of a linearized conversation.
// ConversationID and ConversationTitle are attached by the caller.
type ExtractedMessage struct {
	Author            string   `json:"author"`
	Parts             []Part   `json:"parts"`
	Timestamp         *float64 `json:"timestamp"`
	ConversationID    string   `json:"conversation_id,omitempty"`
	ConversationTitle string   `json:"conversation_title,omitempty"`
}
