package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
}

// SCENE (server -> client): the current city and its statistics.
type SceneMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	RunID           string     `json:"run_id,omitempty"`
	Seed            int64      `json:"seed"`
	Stats           SceneStats `json:"stats"`
	Mesh            MeshDoc    `json:"mesh"`
}

type SceneStats struct {
	Placed       map[string]int `json:"placed"`
	Requested    map[string]int `json:"requested"`
	Vertices     int            `json:"vertices"`
	Triangles    int            `json:"triangles"`
	TotalObjects int            `json:"total_objects"`
}

// REGENERATE (client -> server). Counts overrides individual categories; a nil
// Seed keeps the current one.
type RegenerateMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	Seed            *int64         `json:"seed,omitempty"`
	CitySize        float64        `json:"city_size,omitempty"`
	Counts          map[string]int `json:"counts,omitempty"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
