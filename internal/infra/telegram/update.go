package telegram

import "strings"

// CallbackPrefix marks category selections in inline keyboard callbacks.
const CallbackPrefix = "cat_"

// Update is the inbound webhook payload, reduced to the fields the bot uses.
type Update struct {
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

// Message is an inbound chat message.
type Message struct {
	Chat  Chat   `json:"chat"`
	From  User   `json:"from"`
	Text  string `json:"text"`
	Voice *Voice `json:"voice"`
}

// CallbackQuery is an inline keyboard button press.
type CallbackQuery struct {
	Message *Message `json:"message"`
	Data    string   `json:"data"`
}

// Chat identifies the conversation; its id doubles as the session id.
type Chat struct {
	ID int64 `json:"id"`
}

// User is the message author.
type User struct {
	FirstName string `json:"first_name"`
}

// Voice marks a voice note attachment.
type Voice struct {
	FileID string `json:"file_id"`
}

// CategoryFromCallback extracts the selected category from callback data, if
// the data carries one.
func CategoryFromCallback(data string) (string, bool) {
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", false
	}
	return strings.TrimPrefix(data, CallbackPrefix), true
}
