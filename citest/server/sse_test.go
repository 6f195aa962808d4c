package server_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Event stream", func() {
	It("announces the connection and relays session events", func() {
		sse := testServer.SSEClient()
		defer sse.Close()

		Expect(sse.Connect(ctx, "/event")).To(Succeed())

		_, err := sse.WaitForStreamEvent("server.connected", 3*time.Second)
		Expect(err).NotTo(HaveOccurred())

		// The SSE handler subscribes after writing the connected event.
		time.Sleep(100 * time.Millisecond)

		id := startChat()

		evt, err := sse.WaitForStreamEvent("session.created", 3*time.Second)
		Expect(err).NotTo(HaveOccurred())

		_, properties, err := evt.StreamPayload()
		Expect(err).NotTo(HaveOccurred())

		var payload struct {
			Session struct {
				ID string `json:"id"`
			} `json:"session"`
		}
		Expect(json.Unmarshal(properties, &payload)).To(Succeed())
		Expect(payload.Session.ID).To(Equal(id))
	})

	It("relays turn events as answers are recorded", func() {
		sse := testServer.SSEClient()
		defer sse.Close()

		Expect(sse.Connect(ctx, "/event")).To(Succeed())
		_, err := sse.WaitForStreamEvent("server.connected", 3*time.Second)
		Expect(err).NotTo(HaveOccurred())
		time.Sleep(100 * time.Millisecond)

		id := startChat()
		fetchQuestion(id)
		submitAnswer(id, "streamed answer")

		evt, err := sse.WaitForStreamEvent("turn.recorded", 3*time.Second)
		Expect(err).NotTo(HaveOccurred())

		_, properties, err := evt.StreamPayload()
		Expect(err).NotTo(HaveOccurred())

		var turn struct {
			SessionID string `json:"sessionID"`
			Recorded  int    `json:"recorded"`
		}
		Expect(json.Unmarshal(properties, &turn)).To(Succeed())
		Expect(turn.SessionID).To(Equal(id))
		Expect(turn.Recorded).To(Equal(1))
	})
})
