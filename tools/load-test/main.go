package main

import (
	"bytes"
	"flag"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the registry API")
	numEmployees := flag.Int("employees", 2000, "number of employees to create")
	concurrency := flag.Int("concurrency", 50, "concurrent requests, kept low to avoid local port exhaustion")
	flag.Parse()

	// Each employee is created, read back and then listed in attendance search.
	requestsPerEmployee := 3
	totalRequests := *numEmployees * requestsPerEmployee

	fmt.Printf("Starting load test: %d employees (%d requests each) against %s with concurrency %d\n",
		*numEmployees, requestsPerEmployee, *baseURL, *concurrency)

	var wg sync.WaitGroup
	sem := make(chan struct{}, *concurrency)

	var successCount int64
	var failCount int64

	record := func(resp *http.Response, err error) {
		if err != nil {
			atomic.AddInt64(&failCount, 1)
			return
		}
		defer resp.Body.Close()
		// 404 from search is a valid answer for employees without attendance.
		if resp.StatusCode < 300 || resp.StatusCode == http.StatusNotFound {
			atomic.AddInt64(&successCount, 1)
		} else {
			atomic.AddInt64(&failCount, 1)
		}
	}

	startTime := time.Now()

	for i := 0; i < *numEmployees; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(empID int) {
			defer wg.Done()
			defer func() { <-sem }()

			payload := []byte(fmt.Sprintf(
				`{"employeeId": %d, "employeeName": "Load Test %d", "role": "Tester", "email": "load-%d@example.com", "action": "active", "dateOfJoining": "2024-01-01"}`,
				empID, empID, empID))

			record(http.Post(*baseURL+"/employee", "application/json", bytes.NewBuffer(payload)))
			record(http.Get(fmt.Sprintf("%s/employee/%d", *baseURL, empID)))
			record(http.Get(fmt.Sprintf("%s/attendance/search?employee_id=%d", *baseURL, empID)))
		}(100000 + i)
	}

	wg.Wait()
	duration := time.Since(startTime)

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Requests: %d\n", totalRequests)
	fmt.Printf("Successful:     %d\n", successCount)
	fmt.Printf("Failed:         %d\n", failCount)
	fmt.Printf("Requests/Sec:   %.2f\n", float64(totalRequests)/duration.Seconds())
}
