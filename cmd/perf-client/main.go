package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	v1 "github.com/kkkkikiki/loyalty/internal/api/loyaltyv1"
	"github.com/kkkkikiki/loyalty/internal/api/loyaltyv1/loyaltyv1connect"
)

// PerfResult gathers aggregated metrics for the test run.
// LatencySum and P95Latency are in nanoseconds.
type PerfResult struct {
	TotalRequests int64
	SuccessCount  int64
	ErrorCount    int64
	AbortedCount  int64
	TierChanges   int64
	LatencySum    int64
	P95Latency    int64
}

// ledger tracks what the client believes each customer has spent
type ledger struct {
	mu    sync.Mutex
	spend map[int64]decimal.Decimal
}

func (l *ledger) add(customerID int64, amount decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.spend[customerID] = l.spend[customerID].Add(amount)
}

const defaultTimeout = 30 * time.Second

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "loyalty service base URL")
	rps := flag.Int("rps", 300, "target transactions per second")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	workers := flag.Int("workers", 50, "concurrent workers")
	customers := flag.Int("customers", 20, "customers to create; few customers means heavy per-customer contention")
	flag.Parse()

	transport := &http.Transport{
		MaxIdleConns:        *workers * 4,
		MaxIdleConnsPerHost: *workers * 4,
		IdleConnTimeout:     90 * time.Second,
	}
	httpClient := &http.Client{
		Transport: transport,
		Timeout:   defaultTimeout,
	}
	client := loyaltyv1connect.NewLoyaltyServiceClient(httpClient, *baseURL)

	if err := ensureTiers(client); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up tiers: %v\n", err)
		os.Exit(1)
	}
	ids, err := createCustomers(client, *customers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create customers: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("==========================================")
	fmt.Println("loyalty tier engine load test")
	fmt.Println("==========================================")
	fmt.Printf("customers : %d\n", len(ids))
	fmt.Printf("RPS       : %d\n", *rps)
	fmt.Printf("duration  : %v\n", *duration)
	fmt.Println("==========================================")

	burst := *rps / *workers
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(*rps), burst)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	var (
		result PerfResult
		wg     sync.WaitGroup
		book   = &ledger{spend: make(map[int64]decimal.Decimal, len(ids))}
	)

	latencyChan := make(chan time.Duration, 4096)
	p95Done := make(chan struct{})
	go func() {
		trackP95(latencyChan, &result)
		close(p95Done)
	}()

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				customerID := ids[rng.Intn(len(ids))]
				amount := decimal.New(int64(rng.Intn(20000)+100), -2) // 1.00 .. 200.99
				doRequest(client, customerID, amount, &result, book, latencyChan)
			}
		}(time.Now().UnixNano() + int64(i))
	}

	start := time.Now()
	<-ctx.Done()

	wg.Wait()
	close(latencyChan)
	<-p95Done

	totalDur := time.Since(start)

	fmt.Println("==========================================")
	fmt.Println("results")
	fmt.Println("==========================================")
	fmt.Printf("elapsed        : %.2fs\n", totalDur.Seconds())
	fmt.Printf("requests       : %d\n", result.TotalRequests)
	fmt.Printf("succeeded      : %d\n", result.SuccessCount)
	fmt.Printf("failed         : %d\n", result.ErrorCount)
	fmt.Printf("aborted (retry): %d\n", result.AbortedCount)
	fmt.Printf("tier changes   : %d\n", result.TierChanges)

	var avgLatency time.Duration
	if result.SuccessCount > 0 {
		avgLatency = time.Duration(result.LatencySum / result.SuccessCount)
	}
	var successRate float64
	if result.TotalRequests > 0 {
		successRate = float64(result.SuccessCount) / float64(result.TotalRequests) * 100
	}
	fmt.Printf("actual RPS     : %.2f\n", float64(result.SuccessCount)/totalDur.Seconds())
	fmt.Printf("success rate   : %.2f%%\n", successRate)
	fmt.Printf("avg latency    : %v\n", avgLatency)
	fmt.Printf("P95 latency    : %v\n", time.Duration(atomic.LoadInt64(&result.P95Latency)))

	fmt.Println("==========================================")
	fmt.Println("consistency check")
	fmt.Println("==========================================")
	if err := verifyConsistency(client, book); err != nil {
		fmt.Printf("FAILED: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK: spend totals and assignment histories match")
}

// ensureTiers creates a Bronze/Silver/Gold ladder when no tier exists yet
func ensureTiers(client *loyaltyv1connect.LoyaltyServiceClient) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	res, err := client.ListTiers(ctx, connect.NewRequest(&v1.ListTiersRequest{}))
	if err != nil {
		return err
	}
	if len(res.Msg.Tiers) > 0 {
		return nil
	}

	ladder := []v1.Tier{
		{Name: "Bronze", MinSpend: "0", RankOrder: 3, IsActive: true},
		{Name: "Silver", MinSpend: "500", RankOrder: 2, IsActive: true,
			Benefits: []v1.Benefit{{Title: "Free shipping"}}},
		{Name: "Gold", MinSpend: "2000", RankOrder: 1, IsActive: true,
			Benefits: []v1.Benefit{{Title: "Free shipping"}, {Title: "Priority support"}}},
	}
	for i := range ladder {
		if _, err := client.UpsertTier(ctx, connect.NewRequest(&v1.UpsertTierRequest{Tier: &ladder[i]})); err != nil {
			return fmt.Errorf("create tier %s: %w", ladder[i].Name, err)
		}
	}
	return nil
}

func createCustomers(client *loyaltyv1connect.LoyaltyServiceClient, n int) ([]int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	run := time.Now().UnixNano()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		res, err := client.CreateCustomer(ctx, connect.NewRequest(&v1.CreateCustomerRequest{
			Name:  fmt.Sprintf("Load Test %d", i),
			Phone: fmt.Sprintf("perf-%d-%d", run, i),
		}))
		if err != nil {
			return nil, err
		}
		ids = append(ids, res.Msg.Customer.Id)
	}
	return ids, nil
}

// doRequest performs a single RecordTransaction RPC and collects metrics
func doRequest(client *loyaltyv1connect.LoyaltyServiceClient, customerID int64, amount decimal.Decimal, result *PerfResult, book *ledger, latencyChan chan<- time.Duration) {
	// Independent context so in-flight requests finish when the test ends
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	req := connect.NewRequest(&v1.RecordTransactionRequest{
		CustomerId: customerID,
		Amount:     amount.String(),
		Reference:  "perf-client",
	})

	start := time.Now()
	atomic.AddInt64(&result.TotalRequests, 1)

	resp, err := client.RecordTransaction(ctx, req)
	latency := time.Since(start)

	if err != nil {
		atomic.AddInt64(&result.ErrorCount, 1)
		var connectErr *connect.Error
		if errors.As(err, &connectErr) && connectErr.Code() == connect.CodeAborted {
			atomic.AddInt64(&result.AbortedCount, 1)
		}
		return
	}

	book.add(customerID, amount)
	atomic.AddInt64(&result.SuccessCount, 1)
	atomic.AddInt64(&result.LatencySum, latency.Nanoseconds())
	if resp.Msg.TierChanged {
		atomic.AddInt64(&result.TierChanges, 1)
	}
	select {
	case latencyChan <- latency:
	default:
	}
}

// trackP95 maintains a best-effort rolling P95 latency estimation
func trackP95(latencies <-chan time.Duration, result *PerfResult) {
	const size = 1000
	buf := make([]int64, 0, size)

	for lat := range latencies {
		if len(buf) < size {
			buf = append(buf, lat.Nanoseconds())
		} else if idx := time.Now().UnixNano() % int64(size); idx < int64(size/10) {
			buf[idx] = lat.Nanoseconds()
		}

		if len(buf) >= 100 && len(buf)%100 == 0 {
			sorted := make([]int64, len(buf))
			copy(sorted, buf)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
			p95Index := int(float64(len(sorted)) * 0.95)
			if p95Index >= len(sorted) {
				p95Index = len(sorted) - 1
			}
			atomic.StoreInt64(&result.P95Latency, sorted[p95Index])
		}
	}
}

// verifyConsistency checks every customer's stored spend against what the
// client recorded, and that each history has exactly one open period.
// Stored spend only equals the client's sum under TIER_SPEND_WINDOW=lifetime.
func verifyConsistency(client *loyaltyv1connect.LoyaltyServiceClient, book *ledger) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	book.mu.Lock()
	defer book.mu.Unlock()

	for customerID, expected := range book.spend {
		res, err := client.GetCustomer(ctx, connect.NewRequest(&v1.GetCustomerRequest{CustomerId: customerID}))
		if err != nil {
			return fmt.Errorf("get customer %d: %w", customerID, err)
		}
		actual, err := decimal.NewFromString(res.Msg.Customer.TotalSpend)
		if err != nil {
			return fmt.Errorf("customer %d: bad total_spend %q", customerID, res.Msg.Customer.TotalSpend)
		}
		if !actual.Equal(expected) {
			return fmt.Errorf("customer %d: stored spend %s, recorded %s", customerID, actual, expected)
		}

		history, err := client.GetAssignmentHistory(ctx, connect.NewRequest(&v1.GetAssignmentHistoryRequest{CustomerId: customerID}))
		if err != nil {
			return fmt.Errorf("get history %d: %w", customerID, err)
		}
		open := 0
		for _, a := range history.Msg.Assignments {
			if a.PeriodEnd == "2099-12-31" {
				open++
			}
		}
		if open != 1 {
			return fmt.Errorf("customer %d: %d open assignments", customerID, open)
		}
	}
	return nil
}
