package microgram

// Update is one incoming event from getUpdates.
type Update struct {
	UpdateID      int64    `json:"update_id"`
	Message       *Message `json:"message,omitempty"`
	EditedMessage *Message `json:"edited_message,omitempty"`
	ChannelPost   *Message `json:"channel_post,omitempty"`
}

// Msg returns whichever message the update carries, or nil.
func (u Update) Msg() *Message {
	switch {
	case u.Message != nil:
		return u.Message
	case u.EditedMessage != nil:
		return u.EditedMessage
	case u.ChannelPost != nil:
		return u.ChannelPost
	}
	return nil
}

// Message is a Telegram message, trimmed to the fields the library
// uses.
type Message struct {
	MessageID      int64           `json:"message_id"`
	From           *User           `json:"from,omitempty"`
	Chat           Chat            `json:"chat"`
	Date           int64           `json:"date"`
	Text           string          `json:"text,omitempty"`
	Entities       []MessageEntity `json:"entities,omitempty"`
	ReplyToMessage *Message        `json:"reply_to_message,omitempty"`
}

type User struct {
	ID           int64  `json:"id"`
	IsBot        bool   `json:"is_bot"`
	FirstName    string `json:"first_name"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

type Chat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// MessageEntity marks a span of the message text as a command, url,
// mention and so on. Offsets count characters, not bytes.
type MessageEntity struct {
	Type   string `json:"type"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	URL    string `json:"url,omitempty"`
}

// Entity types the library cares about.
const (
	EntityBotCommand = "bot_command"
	EntityURL        = "url"
	EntityTextLink   = "text_link"
)

// EntityValues returns the distinct substrings of the message text
// covered by entities of the given type, in order of appearance.
func (m *Message) EntityValues(typ string) []string {
	text := []rune(m.Text)

	seen := map[string]struct{}{}
	var values []string
	for _, e := range m.Entities {
		if e.Type != typ {
			continue
		}
		end := e.Offset + e.Length
		if e.Offset < 0 || end > len(text) {
			continue
		}
		v := string(text[e.Offset:end])
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values
}

// Command returns the first bot command in the message, or "".
func (m *Message) Command() string {
	cmds := m.EntityValues(EntityBotCommand)
	if len(cmds) == 0 {
		return ""
	}
	return cmds[0]
}
