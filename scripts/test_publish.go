//go:build ignore

// Публикует сценарий одной сессии карты (датасет, область, клик) в stream:map:events
// и печатает ответные инструкции. Запуск: go run scripts/test_publish.go -date 2026-10-14
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spot-resolver/internal/domain"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	date := flag.String("date", time.Now().UTC().Format("2006-01-02"), "Dataset date")
	lat := flag.Float64("lat", 38.0765, "Click latitude")
	lng := flag.Float64("lng", 128.6234, "Click longitude")
	flag.Parse()

	client := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	sessionID := uuid.NewString()
	events := []domain.MapEvent{
		{SessionID: sessionID, Type: domain.EventDatasetContext, Dataset: &domain.DatasetContext{Date: *date}},
		{SessionID: sessionID, Type: domain.EventViewport, Viewport: &domain.Viewport{
			SouthWest: domain.GeoPoint{Lat: *lat - 2, Lng: *lng - 2},
			NorthEast: domain.GeoPoint{Lat: *lat + 2, Lng: *lng + 2},
		}},
		{SessionID: sessionID, Type: domain.EventClick, Point: &domain.GeoPoint{Lat: *lat, Lng: *lng}},
	}

	// читаем только инструкции, опубликованные после этой точки
	start := "0"
	if last, err := client.XRevRangeN(ctx, domain.StreamMapInstructions, "+", "-", 1).Result(); err == nil && len(last) > 0 {
		start = last[0].ID
	}

	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			log.Fatalf("Failed to marshal event: %v", err)
		}
		id, err := client.XAdd(ctx, &redis.XAddArgs{
			Stream: domain.StreamMapEvents,
			Values: map[string]interface{}{"data": string(data)},
		}).Result()
		if err != nil {
			log.Fatalf("Failed to publish event: %v", err)
		}
		fmt.Printf("published %-8s %s\n", event.Type, id)
	}

	fmt.Printf("\nWaiting for instructions of session %s...\n", sessionID)

	deadline := time.Now().Add(15 * time.Second)
	received := 0
	for time.Now().Before(deadline) && received < len(events) {
		results, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{domain.StreamMapInstructions, start},
			Count:   50,
			Block:   time.Second,
		}).Result()
		if err != nil && err != redis.Nil {
			log.Fatalf("Failed to read instructions: %v", err)
		}

		for _, stream := range results {
			for _, msg := range stream.Messages {
				start = msg.ID
				dataStr, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}
				var batch domain.InstructionBatch
				if err := json.Unmarshal([]byte(dataStr), &batch); err != nil || batch.SessionID != sessionID {
					continue
				}
				received++
				pretty, _ := json.MarshalIndent(batch, "", "  ")
				fmt.Printf("%s\n", pretty)
			}
		}
	}

	if received == 0 {
		fmt.Println("Timeout waiting for instructions")
	}
}
