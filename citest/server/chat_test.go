package server_test

import (
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pawchat-ai/pawchat/internal/prompt"
	"github.com/pawchat-ai/pawchat/pkg/types"
)

type startResponse struct {
	SessionID string `json:"sessionID"`
	Message   string `json:"message"`
}

type questionResponse struct {
	Question string `json:"question"`
}

type answerResponse struct {
	Success      bool   `json:"success"`
	AIResponse   string `json:"aiResponse"`
	NextQuestion string `json:"nextQuestion"`
	Completed    bool   `json:"completed"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type greetingResponse struct {
	Message      string `json:"message"`
	ContinueChat bool   `json:"continueChat"`
}

func startChat() string {
	resp, err := client.Post(ctx, "/chat/start", nil)
	Expect(err).NotTo(HaveOccurred())
	Expect(resp.StatusCode).To(Equal(http.StatusCreated))

	var start startResponse
	Expect(resp.JSON(&start)).To(Succeed())
	Expect(start.SessionID).NotTo(BeEmpty())
	Expect(start.Message).To(HaveSuffix("?"))
	return start.SessionID
}

func fetchQuestion(sessionID string) string {
	resp, err := client.Get(ctx, "/chat/question/"+sessionID)
	Expect(err).NotTo(HaveOccurred())
	Expect(resp.StatusCode).To(Equal(http.StatusOK))

	var q questionResponse
	Expect(resp.JSON(&q)).To(Succeed())
	return q.Question
}

func submitAnswer(sessionID, answer string) answerResponse {
	resp, err := client.Post(ctx, "/chat/answer/"+sessionID, map[string]string{"answer": answer})
	Expect(err).NotTo(HaveOccurred())
	Expect(resp.StatusCode).To(Equal(http.StatusOK), resp.String())

	var a answerResponse
	Expect(resp.JSON(&a)).To(Succeed())
	return a
}

var _ = Describe("Chat API", func() {
	Describe("session creation", func() {
		It("starts a session with a unique ID", func() {
			first := startChat()
			second := startChat()
			Expect(first).NotTo(Equal(second))
		})

		It("hands out distinct IDs across many sessions", func() {
			seen := map[string]bool{}
			for i := 0; i < 50; i++ {
				id := startChat()
				Expect(seen[id]).To(BeFalse(), "duplicate session ID %s", id)
				seen[id] = true
			}
		})
	})

	Describe("question and answer flow", func() {
		It("serves a question and records the answer", func() {
			id := startChat()

			question := fetchQuestion(id)
			Expect(question).To(HaveSuffix("?"))

			result := submitAnswer(id, "My cat naps all day.")
			Expect(result.Success).To(BeTrue())
			Expect(result.Completed).To(BeFalse())
			Expect(result.AIResponse).NotTo(BeEmpty())
			Expect(result.NextQuestion).To(HaveSuffix("?"))
		})

		It("rejects an answer before any question was issued", func() {
			// Created directly so no question has been issued yet.
			session, err := testServer.Engine.Create(ctx)
			Expect(err).NotTo(HaveOccurred())

			resp, err := client.Post(ctx, "/chat/answer/"+session.ID, map[string]string{"answer": "eager"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusConflict))

			var e errorResponse
			Expect(resp.JSON(&e)).To(Succeed())
			Expect(e.Error.Code).To(Equal("NO_PENDING_QUESTION"))
		})

		It("rejects an empty answer", func() {
			id := startChat()
			fetchQuestion(id)

			resp, err := client.Post(ctx, "/chat/answer/"+id, map[string]string{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for an unknown session", func() {
			resp, err := client.Get(ctx, "/chat/question/no-such-session")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))

			var e errorResponse
			Expect(resp.JSON(&e)).To(Succeed())
			Expect(e.Error.Code).To(Equal("NOT_FOUND"))
		})
	})

	Describe("completing a conversation", func() {
		var id string
		defaults := prompt.Default()

		BeforeEach(func() {
			id = startChat()
			var last answerResponse
			for i := 0; i < types.MaxTurns; i++ {
				fetchQuestion(id)
				last = submitAnswer(id, fmt.Sprintf("answer number %d", i))
			}
			Expect(last.Completed).To(BeTrue())
			Expect(last.AIResponse).To(Equal(defaults.CompletionReaction))
			Expect(last.NextQuestion).To(Equal(defaults.TerminalMessage))
		})

		It("moves the session into the archive", func() {
			resp, err := client.Get(ctx, "/chat/completed/"+id)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var archived types.CompletedSession
			Expect(resp.JSON(&archived)).To(Succeed())
			Expect(archived.ID).To(Equal(id))
			Expect(archived.Turns).To(HaveLen(types.MaxTurns))
			Expect(archived.EndTime.IsZero()).To(BeFalse())
		})

		It("no longer reports the session as incomplete", func() {
			resp, err := client.Get(ctx, "/chat/incomplete/"+id)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("keeps answering terminally without growing the archive", func() {
			for i := 0; i < 3; i++ {
				Expect(fetchQuestion(id)).To(Equal(defaults.TerminalMessage))

				result := submitAnswer(id, "one more")
				Expect(result.Completed).To(BeTrue())
				Expect(result.NextQuestion).To(Equal(defaults.TerminalMessage))
			}

			resp, err := client.Get(ctx, "/chat/completed/"+id)
			Expect(err).NotTo(HaveOccurred())

			var archived types.CompletedSession
			Expect(resp.JSON(&archived)).To(Succeed())
			Expect(archived.Turns).To(HaveLen(types.MaxTurns))
		})
	})

	Describe("resuming a conversation", func() {
		It("returns the session with its pending question", func() {
			id := startChat()
			question := fetchQuestion(id)
			submitAnswer(id, "first answer")

			resp, err := client.Get(ctx, "/chat/incomplete/"+id)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var wrapped struct {
				Session types.Session `json:"session"`
			}
			Expect(resp.JSON(&wrapped)).To(Succeed())
			Expect(wrapped.Session.ID).To(Equal(id))
			Expect(wrapped.Session.Turns).To(HaveLen(1))
			Expect(wrapped.Session.Turns[0].Question).To(Equal(question))
			Expect(wrapped.Session.PendingQuestion).NotTo(BeEmpty())
		})
	})

	Describe("greeting", func() {
		It("continues the chat on an agreeable answer", func() {
			resp, err := client.Post(ctx, "/chat/greeting", map[string]string{"answer": "Yes, let's talk!"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var g greetingResponse
			Expect(resp.JSON(&g)).To(Succeed())
			Expect(g.ContinueChat).To(BeTrue())
		})

		It("declines politely otherwise", func() {
			resp, err := client.Post(ctx, "/chat/greeting", map[string]string{"answer": "not right now"})
			Expect(err).NotTo(HaveOccurred())

			var g greetingResponse
			Expect(resp.JSON(&g)).To(Succeed())
			Expect(g.ContinueChat).To(BeFalse())
			Expect(g.Message).To(Equal(prompt.Default().GreetingDecline))
		})
	})

	Describe("health", func() {
		It("responds ok", func() {
			resp, err := client.Get(ctx, "/health")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})
})
