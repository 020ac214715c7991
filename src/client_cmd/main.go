package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type headersValue struct {
	headers http.Header
}

func (this *headersValue) Set(arg string) error {
	name, value, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return fmt.Errorf("invalid header %q, expected name=value", arg)
	}
	if this.headers == nil {
		this.headers = http.Header{}
	}
	this.headers.Add(name, value)
	return nil
}

func (this *headersValue) String() string {
	return fmt.Sprint(this.headers)
}

func main() {
	gatewayUrl := flag.String(
		"gateway", "http://localhost:8080", "base url of the gateway")
	method := flag.String("method", "GET", "request method")
	path := flag.String("path", "/", "request path")
	userId := flag.String("user_id", "", "value of the X-USER-ID header")
	token := flag.String("token", "", "bearer token sent in the Authorization header")
	requestId := flag.String("request_id", "", "value of the X-Request-ID header")
	count := flag.Int("n", 1, "number of requests to send, e.g. to watch a rate limit trip")
	var headers headersValue
	flag.Var(
		&headers, "header", "extra request header as name=value, may be repeated")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}
	for i := 0; i < *count; i++ {
		req, err := http.NewRequest(*method, strings.TrimSuffix(*gatewayUrl, "/")+*path, nil)
		if err != nil {
			fmt.Printf("invalid request: %s\n", err.Error())
			os.Exit(1)
		}
		for name, values := range headers.headers {
			req.Header[name] = values
		}
		if *userId != "" {
			req.Header.Set("X-USER-ID", *userId)
		}
		if *token != "" {
			req.Header.Set("Authorization", "Bearer "+*token)
		}
		if *requestId != "" {
			req.Header.Set("X-Request-ID", *requestId)
		}

		resp, err := client.Do(req)
		if err != nil {
			fmt.Printf("request failed: %s\n", err.Error())
			os.Exit(1)
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		fmt.Printf("%d %s request_id=%s %s\n", resp.StatusCode, http.StatusText(resp.StatusCode),
			resp.Header.Get("X-Request-ID"), strings.TrimSpace(string(body)))
	}
}
