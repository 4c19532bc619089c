package chatexport

import (
	"bytes"
	"encoding/json"
)

// Extract linearizes a conversation by walking from its current node back to
// the root, keeping only messages with usable parts. The result is in
// chronological order (root first).
//
// Missing nodes end the walk; so does revisiting a node, which only happens
// in a malformed export with a cyclic parent chain.
func Extract(conv *Conversation) []ExtractedMessage {
	var messages []ExtractedMessage

	if conv == nil || conv.CurrentNode == nil || *conv.CurrentNode == "" || len(conv.Mapping) == 0 {
		return messages
	}

	visited := make(map[string]bool)
	current := conv.CurrentNode

	for current != nil {
		id := *current
		if visited[id] {
			break
		}
		visited[id] = true

		node, ok := conv.Mapping[id]
		if !ok {
			break
		}

		if msg, ok := extractMessage(node.Message); ok {
			messages = append(messages, msg)
		}

		current = node.Parent
	}

	// Walked leaf -> root, reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages
}

func extractMessage(m *Message) (ExtractedMessage, bool) {
	if m == nil || m.Content == nil || len(m.Content.Parts) == 0 {
		return ExtractedMessage{}, false
	}

	role := m.Author.Role
	isUserSystem := m.Metadata.IsUserSystemMessage

	if role == RoleSystem && !isUserSystem {
		return ExtractedMessage{}, false
	}

	author := normalizeAuthor(role, isUserSystem)

	switch m.Content.ContentType {
	case "text", "multimodal_text":
	default:
		return ExtractedMessage{}, false
	}

	var parts []Part
	for _, raw := range m.Content.Parts {
		parts = appendParts(parts, raw)
	}
	if len(parts) == 0 {
		return ExtractedMessage{}, false
	}

	return ExtractedMessage{
		Author:    author,
		Parts:     parts,
		Timestamp: m.CreateTime,
	}, true
}

func normalizeAuthor(role string, isUserSystem bool) string {
	switch {
	case role == RoleAssistant || role == RoleTool:
		return AuthorChatGPT
	case role == RoleSystem && isUserSystem:
		return AuthorCustomUserInfo
	default:
		return role
	}
}

// appendParts converts one raw part into zero or more normalized parts
func appendParts(parts []Part, raw json.RawMessage) []Part {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return parts
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			parts = append(parts, TextPart{Text: s})
		}
		return parts
	case '{':
	default:
		// numbers, arrays, null: nothing usable
		return parts
	}

	var p rawPart
	if err := json.Unmarshal(raw, &p); err != nil {
		return parts
	}

	switch p.ContentType {
	case PartTypeAudioTranscription:
		parts = append(parts, TranscriptPart{Transcript: p.Text})
	case PartTypeAudioAssetPointer, PartTypeImageAssetPointer, PartTypeVideoContainerAsset:
		parts = append(parts, AssetPart{Asset: raw})
	case PartTypeRealTimeAudioVideoAssets:
		if present(p.AudioAssetPointer) {
			parts = append(parts, AssetPart{Asset: p.AudioAssetPointer})
		}
		if present(p.VideoContainerAsset) {
			parts = append(parts, AssetPart{Asset: p.VideoContainerAsset})
		}
		for _, frame := range p.FramesAssetPointers {
			if present(frame) {
				parts = append(parts, AssetPart{Asset: frame})
			}
		}
	}

	return parts
}

// present reports whether an optional JSON value carries anything
func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "{}", `""`:
		return false
	}
	return true
}
