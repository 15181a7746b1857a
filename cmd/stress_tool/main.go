package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Config
const (
	BaseURL      = "http://localhost:8080/api"
	TotalUsers   = 50  // 并发用户数
	OpsPerUser   = 20  // 每个用户的点击次数
	MaxRetries   = 100 // 被限流时的重试次数
	RetryBackoff = 200 * time.Millisecond
)

var httpClient *http.Client

func init() {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 200
	t.MaxIdleConnsPerHost = 200
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type counts struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

func main() {
	runID := time.Now().UnixNano()

	// 1. 注册用户
	tokens := make([]string, TotalUsers)
	for i := range tokens {
		token, err := register(fmt.Sprintf("stress_%d_%d", runID, i))
		if err != nil {
			fmt.Printf("注册用户 %d 失败: %v\n", i, err)
			os.Exit(1)
		}
		tokens[i] = token
	}

	// 2. 第一个用户发一条根评论
	commentID, err := createComment(tokens[0], fmt.Sprintf("stress test %d", runID))
	if err != nil {
		fmt.Printf("创建评论失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("开始压测：%d 个用户并发对评论 %s 点击 like/dislike，每人 %d 次...\n", TotalUsers, commentID, OpsPerUser)

	// 3. 每个用户在自己的 goroutine 里顺序切换，最终状态可由本地状态机推出
	var (
		wg       sync.WaitGroup
		failures atomic.Int64
		mu       sync.Mutex
		expected counts
	)
	start := time.Now()

	for i, token := range tokens {
		wg.Add(1)
		go func(seed int64, token string) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			var state string
			for j := 0; j < OpsPerUser; j++ {
				action := "like"
				if rng.Intn(2) == 0 {
					action = "dislike"
				}
				next, err := toggle(token, commentID, action)
				if err != nil {
					failures.Add(1)
					return
				}
				state = next
			}
			mu.Lock()
			switch state {
			case "like":
				expected.Likes++
			case "dislike":
				expected.Dislikes++
			}
			mu.Unlock()
		}(runID+int64(i), token)
	}

	wg.Wait()
	duration := time.Since(start)

	// 4. 校验计数
	actual, err := countsFor(commentID)
	if err != nil {
		fmt.Printf("读取计数失败: %v\n", err)
		os.Exit(1)
	}

	total := TotalUsers * OpsPerUser
	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("总请求数: %d\n", total)
	fmt.Printf("QPS: %.2f\n", float64(total)/duration.Seconds())
	fmt.Printf("失败用户: %d\n", failures.Load())
	fmt.Printf("likes: %d (预期: %d)\n", actual.Likes, expected.Likes)
	fmt.Printf("dislikes: %d (预期: %d)\n", actual.Dislikes, expected.Dislikes)
	fmt.Println("--------------------------------------------------")

	if failures.Load() == 0 && actual != expected {
		fmt.Println("计数不一致")
		os.Exit(1)
	}
}

func register(username string) (string, error) {
	var data struct {
		Token string `json:"token"`
	}
	err := call(http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@stress.local",
		"password": "stress-password",
	}, &data)
	return data.Token, err
}

func createComment(token, content string) (string, error) {
	var data struct {
		ID string `json:"id"`
	}
	err := call(http.MethodPost, "/comments", token, map[string]string{"content": content}, &data)
	return data.ID, err
}

func toggle(token, commentID, action string) (string, error) {
	var data struct {
		ReactionType *string `json:"reactionType"`
	}
	err := call(http.MethodPost, "/comments/"+commentID+"/reaction/toggle", token,
		map[string]string{"reactionType": action}, &data)
	if err != nil || data.ReactionType == nil {
		return "", err
	}
	return *data.ReactionType, nil
}

// countsFor 从第一页里找到目标评论
func countsFor(commentID string) (counts, error) {
	var data struct {
		Comments []struct {
			ID string `json:"id"`
			counts
		} `json:"comments"`
	}
	if err := call(http.MethodGet, "/comments?limit=100", "", nil, &data); err != nil {
		return counts{}, err
	}
	for _, c := range data.Comments {
		if c.ID == commentID {
			return c.counts, nil
		}
	}
	return counts{}, errors.New("comment not found in first page")
}

// call 发请求并解开统一响应，429 时退避重试
func call(method, path, token string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return err
		}
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequest(method, BaseURL+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			return err
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < MaxRetries {
			time.Sleep(RetryBackoff * time.Duration(min(attempt+1, 5)))
			continue
		}
		if resp.StatusCode >= 300 {
			return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, respBody)
		}

		var env envelope
		if err := json.Unmarshal(respBody, &env); err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		return json.Unmarshal(env.Data, out)
	}
}
