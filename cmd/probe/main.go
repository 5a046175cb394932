package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"polycity.ai/internal/persistence/meshfile"
	"polycity.ai/internal/protocol"
)

func main() {
	var (
		url      = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name     = flag.String("name", "probe", "client name")
		seed     = flag.Int64("seed", 0, "request a regeneration with this seed")
		counts   = flag.String("counts", "", "category overrides, e.g. trees=10,crystals=3")
		save     = flag.String("save", "", "write the received mesh to this path (.json or .json.zst)")
		validate = flag.Bool("validate", true, "validate the received SCENE against scene.schema.json")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[probe] ", log.LstdFlags|log.Lmicroseconds)

	overrides, err := parseCounts(*counts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bad -counts:", err)
		os.Exit(2)
	}
	var req *protocol.RegenerateMsg
	seedSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})
	if seedSet || len(overrides) > 0 {
		req = &protocol.RegenerateMsg{
			Type:            protocol.TypeRegenerate,
			ProtocolVersion: protocol.Version,
			Counts:          overrides,
		}
		if seedSet {
			req.Seed = seed
		}
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sc, raw, err := probe(conn, *name, req)
	if err != nil {
		logger.Fatalf("probe: %v", err)
	}
	if *validate {
		if err := protocol.ValidateSceneJSON(raw); err != nil {
			logger.Fatalf("scene fails schema: %v", err)
		}
	}
	logger.Printf("SCENE run_id=%s seed=%d", sc.RunID, sc.Seed)
	printStats(os.Stdout, sc.Stats)

	if *save != "" {
		hdr := meshfile.NewHeader(sc.RunID, sc.Seed, sc.Mesh)
		if err := meshfile.Write(*save, hdr, sc.Mesh); err != nil {
			logger.Fatalf("save: %v", err)
		}
		logger.Printf("saved %s", *save)
	}
}

// probe performs the HELLO handshake and returns the first SCENE, or the
// SCENE answering req when req is set.
func probe(conn *websocket.Conn, name string, req *protocol.RegenerateMsg) (protocol.SceneMsg, []byte, error) {
	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		return protocol.SceneMsg{}, nil, fmt.Errorf("send HELLO: %w", err)
	}
	sc, raw, err := readScene(conn)
	if err != nil || req == nil {
		return sc, raw, err
	}
	if err := conn.WriteJSON(req); err != nil {
		return sc, raw, fmt.Errorf("send REGENERATE: %w", err)
	}
	return readScene(conn)
}

func readScene(conn *websocket.Conn) (protocol.SceneMsg, []byte, error) {
	for {
		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return protocol.SceneMsg{}, nil, err
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeScene:
			var sc protocol.SceneMsg
			if err := json.Unmarshal(msg, &sc); err != nil {
				return sc, nil, err
			}
			return sc, msg, nil
		case protocol.TypeError:
			var e protocol.ErrorMsg
			_ = json.Unmarshal(msg, &e)
			return protocol.SceneMsg{}, nil, fmt.Errorf("%s: %s", e.Code, e.Message)
		}
	}
}

func parseCounts(s string) (map[string]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	out := map[string]int{}
	for _, part := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("expected name=count, got %q", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[strings.TrimSpace(k)] = n
	}
	return out, nil
}

func printStats(w io.Writer, s protocol.SceneStats) {
	names := make([]string, 0, len(s.Requested))
	for k := range s.Requested {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(w, "%-18s %6d / %d\n", k, s.Placed[k], s.Requested[k])
	}
	fmt.Fprintf(w, "TOTAL OBJECTS: %d\n", s.TotalObjects)
	fmt.Fprintf(w, "VERTICES:      %d\n", s.Vertices)
	fmt.Fprintf(w, "TRIANGLES:     %d\n", s.Triangles)
}
