package types

// ClientMessage is what the chat relay sends over the websocket: one lobby
// event per message, discriminated by Type.
type ClientMessage struct {
	Type       string   `json:"type"`
	Name       string   `json:"name,omitempty"`
	Sender     string   `json:"sender,omitempty"`
	Text       string   `json:"text,omitempty"`
	Admin      bool     `json:"admin,omitempty"`
	Players    []string `json:"players,omitempty"`
	Host       string   `json:"host,omitempty"`
	Recovering bool     `json:"recovering,omitempty"`
}

// ServerMessage goes back to the relay. Commands are chat lines the relay
// must forward into the lobby, in order.
type ServerMessage struct {
	Type     string   `json:"type"` // "Snapshot" | "Error"
	Version  int      `json:"version,omitempty"`
	Queue    []string `json:"queue,omitempty"`
	Host     string   `json:"host,omitempty"`
	Commands []string `json:"commands,omitempty"`
	Error    string   `json:"error,omitempty"`
}
