// beamview-watch - subscribe to a beamview preview stream
//
// Dials the dashboard's preview websocket and writes every Nth JPEG
// frame to disk. Handy for checking the overlay from another machine.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	host := "localhost:8090"
	if h := os.Getenv("BEAMVIEW_HOST"); h != "" {
		host = h
	}
	url := "ws://" + host + "/ws/preview"

	fmt.Println("📡 beamview preview watcher")
	fmt.Printf("Dialing %s\n\n", url)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		fmt.Printf("❌ Dial failed: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	frameCount := 0
	savedCount := 0
	startTime := time.Now()

	go func() {
		<-sigChan
		elapsed := time.Since(startTime).Seconds()
		fmt.Printf("\n📊 %d frames in %.1fs = %.2f fps (%d saved)\n",
			frameCount, elapsed, float64(frameCount)/elapsed, savedCount)
		conn.Close()
		os.Exit(0)
	}()

	const saveEvery = 10

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			fmt.Printf("❌ Read failed: %v\n", err)
			os.Exit(1)
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		frameCount++
		if frameCount%saveEvery == 1 {
			name := fmt.Sprintf("preview_%04d.jpg", frameCount)
			if err := os.WriteFile(name, data, 0o644); err != nil {
				fmt.Printf("⚠️  Save failed: %v\n", err)
				continue
			}
			savedCount++
			fmt.Printf("💾 %s (%d KB)\n", name, len(data)/1024)
		}
	}
}
