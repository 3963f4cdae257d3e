package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var verbose bool
var baseURL *url.URL

// scenario 封装一次端到端巡检过程中共享的资源。
type scenario struct {
	client *http.Client
	suffix string
}

func banner(title string) {
	log.Printf("\n=== %s ===", title)
}

func step(format string, args ...interface{}) {
	log.Printf(" • "+format, args...)
}

type cheeseType struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type cheese struct {
	ID            uint64 `json:"id"`
	Title         string `json:"title"`
	CheeseTypeID  uint64 `json:"cheese_type_id"`
	PackagingType string `json:"packaging_type"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

func main() {
	var (
		base    string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://127.0.0.1:8080", "Base URL of the cheese catalog server")
	flag.DurationVar(&timeout, "timeout", 20*time.Second, "HTTP timeout for requests")
	flag.BoolVar(&verbose, "v", true, "Verbose logging")
	flag.Parse()

	var err error
	baseURL, err = url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		log.Fatalf("parse base url: %v", err)
	}

	// 目标库中的数据会保留，名称追加时间戳避免与上次运行冲突
	sc := &scenario{client: &http.Client{Timeout: timeout}, suffix: fmt.Sprintf("%d", time.Now().UnixNano())}
	sc.run()
}

func (s *scenario) run() {
	must := func(err error, msg string) {
		if err != nil {
			log.Fatalf("%s: %v", msg, err)
		}
	}

	log.Printf("E2E start -> %s", baseURL)

	banner("Bootstrap & Health Checks")
	step("GET / greeting")
	var hello map[string]string
	must(doJSON(s.client, "GET", endpoint("/"), nil, 200, &hello), "root")
	if hello["message"] != "Hello World" {
		log.Fatalf("unexpected greeting: %v", hello)
	}
	step("Probe /healthz")
	must(doJSON(s.client, "GET", endpoint("/healthz"), nil, 200, nil), "healthz")
	step("Probe /metrics")
	must(expectStatus(s.client, endpoint("/metrics"), 200), "metrics")

	banner("Cheese Types")
	soft := "Soft " + s.suffix
	step("POST /cheese_types/ %q", soft)
	var ct cheeseType
	must(doJSON(s.client, "POST", endpoint("/cheese_types/"), map[string]any{"name": soft}, 200, &ct), "create cheese type")
	if ct.ID == 0 || ct.Name != soft {
		log.Fatalf("unexpected cheese type: %+v", ct)
	}
	step("POST /cheese_types/ %q again (expect 400)", soft)
	must(expectDetail(s.client, "POST", endpoint("/cheese_types/"), map[string]any{"name": soft}, 400, "Cheese type with this name already exists"), "duplicate cheese type")
	step("GET /cheese_types/ contains %q exactly once", soft)
	var types []cheeseType
	must(doJSON(s.client, "GET", endpoint("/cheese_types/"), nil, 200, &types), "list cheese types")
	seen := 0
	for _, t := range types {
		if t.Name == soft {
			seen++
		}
	}
	if seen != 1 {
		log.Fatalf("cheese type %q listed %d times", soft, seen)
	}

	banner("Cheese")
	brie := "Brie " + s.suffix
	step("POST /cheese/ %q", brie)
	var c cheese
	must(doJSON(s.client, "POST", endpoint("/cheese/"), map[string]any{"title": brie, "cheese_type_id": ct.ID, "packaging_type": "wrapped"}, 200, &c), "create cheese")
	if c.ID == 0 || c.Title != brie || c.CheeseTypeID != ct.ID || c.PackagingType != "wrapped" {
		log.Fatalf("unexpected cheese: %+v", c)
	}
	step("POST /cheese/ %q again with other fields (expect 400)", brie)
	must(expectDetail(s.client, "POST", endpoint("/cheese/"), map[string]any{"title": brie, "cheese_type_id": ct.ID, "packaging_type": "waxed"}, 400, "Cheese with this title already exists"), "duplicate cheese")
	step("POST /cheese/ with missing cheese type (expect 400)")
	must(expectDetail(s.client, "POST", endpoint("/cheese/"), map[string]any{"title": "Orphan " + s.suffix, "cheese_type_id": uint64(math.MaxUint64), "packaging_type": "wrapped"}, 400, "Cheese type not found"), "missing cheese type")
	step("POST /cheese/ with unknown packaging (expect 400)")
	must(expectDetail(s.client, "POST", endpoint("/cheese/"), map[string]any{"title": "Tin " + s.suffix, "cheese_type_id": ct.ID, "packaging_type": "tin"}, 400, "Unknown packaging type"), "unknown packaging")

	step("GET /cheese/?cheese_type=%s", soft)
	var list []cheese
	must(doJSON(s.client, "GET", endpoint("/cheese/?"+url.Values{"cheese_type": {soft}}.Encode()), nil, 200, &list), "list cheese by type")
	if len(list) != 1 || list[0] != c {
		log.Fatalf("unexpected filtered list: %+v", list)
	}
	step("GET /cheese/%d/", c.ID)
	var got cheese
	must(doJSON(s.client, "GET", endpoint(fmt.Sprintf("/cheese/%d/", c.ID)), nil, 200, &got), "get cheese")
	if got != c {
		log.Fatalf("get cheese mismatch: %+v != %+v", got, c)
	}
	step("GET /cheese/<unknown>/ (expect 404)")
	must(expectDetail(s.client, "GET", endpoint(fmt.Sprintf("/cheese/%d/", uint64(math.MaxUint64))), nil, 404, "Cheese not found"), "missing cheese")

	log.Printf("\nE2E OK: 目录读写链路检查通过 (type=%d, cheese=%d)\n", ct.ID, c.ID)
}

func endpoint(p string) string {
	u, _ := url.Parse(p)
	return baseURL.ResolveReference(u).String()
}

func doJSON(client *http.Client, method, urlStr string, body any, want int, out any) error {
	status, b, err := send(client, method, urlStr, body)
	if err != nil {
		return err
	}
	if status != want {
		return fmt.Errorf("%s %s: status %d, want %d, body: %s", method, urlStr, status, want, safeTrunc(string(b), 2048))
	}
	if out != nil {
		if err := json.Unmarshal(b, out); err != nil {
			return err
		}
	}
	return nil
}

// expectDetail 校验状态码以及错误响应体中的 detail 文本。
func expectDetail(client *http.Client, method, urlStr string, body any, want int, detail string) error {
	var eb errorBody
	if err := doJSON(client, method, urlStr, body, want, &eb); err != nil {
		return err
	}
	if eb.Detail != detail {
		return fmt.Errorf("%s %s: detail %q, want %q", method, urlStr, eb.Detail, detail)
	}
	return nil
}

func expectStatus(client *http.Client, urlStr string, want int) error {
	resp, err := client.Get(urlStr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != want {
		return fmt.Errorf("GET %s: status %d want %d body: %s", urlStr, resp.StatusCode, want, string(b))
	}
	if verbose {
		log.Printf("GET %s -> %d (%d bytes)", urlStr, resp.StatusCode, len(b))
	}
	return nil
}

func send(client *http.Client, method, urlStr string, body any) (int, []byte, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		r = bytes.NewReader(b)
		if verbose {
			log.Printf("%s %s\n请求体: %s", method, urlStr, prettyJSON(b))
		}
	}
	req, err := http.NewRequest(method, urlStr, r)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if verbose {
		log.Printf("%s %s -> %d\n响应体: %s", method, urlStr, resp.StatusCode, prettyJSON(b))
	}
	return resp.StatusCode, b, nil
}

func prettyJSON(b []byte) string {
	var js any
	if err := json.Unmarshal(b, &js); err != nil {
		return safeTrunc(string(b), 1200)
	}
	pb, _ := json.MarshalIndent(js, "", "  ")
	return string(pb)
}

func safeTrunc(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
