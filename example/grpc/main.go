package main

import (
	"context"
	"fmt"
	"log"
	"time"

	appgrpc "github.com/CoolE88/patient-monitor-service/internal/grpc"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

func main() {
	conn, err := grpc.NewClient("localhost:9090",
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("Failed to close connection: %v", err)
		}
	}()

	client := appgrpc.NewClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Тест 1: давление
	fmt.Println("=== Test 1: CheckBloodPressure ===")
	resp, err := client.CheckBloodPressure(ctx, &appgrpc.BloodPressureRequest{PatientID: "1234", Upper: 60, Lower: 120})
	printResult(resp, err)

	// Тест 2: температура
	fmt.Println("\n=== Test 2: CheckTemperature ===")
	resp, err = client.CheckTemperature(ctx, &appgrpc.TemperatureRequest{PatientID: "1234", Temperature: "35.15"})
	printResult(resp, err)

	// Тест 3: Ошибки валидации
	fmt.Println("\n=== Test 3: Validation Errors ===")
	_, err = client.CheckTemperature(ctx, &appgrpc.TemperatureRequest{PatientID: "1234", Temperature: "hot"})
	printResult(nil, err)
	_, err = client.GetPatient(ctx, &appgrpc.PatientRequest{})
	printResult(nil, err)
}

func printResult(resp *appgrpc.CheckResponse, err error) {
	if err != nil {
		if st, ok := status.FromError(err); ok {
			fmt.Printf("gRPC error: %s (code: %s)\n", st.Message(), st.Code())
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		return
	}
	if resp == nil {
		return
	}
	fmt.Printf("patient %s, %s: abnormal=%t %s\n", resp.PatientID, resp.Kind, resp.Abnormal, resp.Message)
}
