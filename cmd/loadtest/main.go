package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Result 记录单次请求的 HTTP 结果，便于聚合统计。
type Result struct {
	Status int
	Body   string
	Err    error
}

func main() {
	baseURL := flag.String("base", "http://localhost:8080", "server base url")
	voucherID := flag.Int("voucher", 1, "voucher id")
	preload := flag.Bool("preload", true, "call preload before test")
	adminToken := flag.String("admin-token", "dev-admin-token", "admin token for preload endpoint")

	// 超卖测试参数：users 个用户并发抢同一张券
	nUsers := flag.Int("users", 200, "distinct users")
	concurrency := flag.Int("c", 50, "max concurrency")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	if *preload {
		// 先预热 Redis 准入库存，避免库存 key 缺失导致全部 OutOfStock
		err := doPOST(client, fmt.Sprintf("%s/api/voucher/preload/%d", *baseURL, *voucherID), nil, map[string]string{
			"X-Admin-Token": *adminToken,
		})
		if err != nil {
			panic(fmt.Sprintf("preload failed: %v", err))
		}
		fmt.Println("preload ok")
	}

	// 1) 不超卖测试：不同 user 并发
	fmt.Printf("start oversell test: voucher=%d users=%d concurrency=%d\n", *voucherID, *nUsers, *concurrency)
	results := runSeckill(client, *baseURL, *voucherID, *nUsers, *concurrency, false)
	printSummary("oversell", results)

	// 2) 一人一单测试：同一个 user 重复抢
	fmt.Println("\nstart one-per-user test: same user (10001), 50 requests, concurrency 50")
	results2 := runSeckill(client, *baseURL, *voucherID, 50, 50, true)
	printSummary("one_per_user", results2)
}

func runSeckill(client *http.Client, baseURL string, voucherID, n, concurrency int, sameUser bool) []Result {
	type Req struct {
		UserID uint64 `json:"user_id"`
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]Result, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			userID := uint64(10001)
			if !sameUser {
				userID = uint64(20000 + idx)
			}
			body, _ := json.Marshal(Req{UserID: userID})
			url := fmt.Sprintf("%s/api/voucher/seckill/%d", baseURL, voucherID)
			resp, err := client.Post(url, "application/json", bytes.NewReader(body))
			if err != nil {
				results[idx] = Result{Err: err}
				return
			}
			defer resp.Body.Close()
			b, _ := io.ReadAll(resp.Body)
			results[idx] = Result{Status: resp.StatusCode, Body: string(b)}
		}(i)
	}
	wg.Wait()
	return results
}

func doPOST(client *http.Client, url string, body []byte, headers map[string]string) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

func printSummary(name string, results []Result) {
	counts := map[string]int{}
	for _, r := range results {
		switch {
		case r.Err != nil:
			counts["transport_error"]++
		case r.Status == http.StatusOK:
			counts["admitted"]++
		case r.Status == http.StatusTooManyRequests:
			counts["rate_limited"]++
		default:
			counts[fmt.Sprintf("http_%d", r.Status)]++
		}
	}
	fmt.Printf("[%s] total=%d summary=%v\n", name, len(results), counts)
}
