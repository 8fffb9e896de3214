package e2e

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type MessagingSuite struct {
	BaseRelaySuite
}

func TestMessagingSuite(t *testing.T) {
	suite.Run(t, new(MessagingSuite))
}

// signup creates a throwaway account and returns its username and token.
func (s *MessagingSuite) signup(t *testing.T, role string) (string, string) {
	username := fmt.Sprintf("%s%s", role, uuid.NewString()[:8])
	status, reply := s.PostJSON(t, "/api/auth/signup", "", map[string]string{
		"email":    username + "@example.com",
		"username": username,
		"password": "E2e-relay-passw0rd",
	})
	s.Require().Equal(http.StatusCreated, status)
	token, _ := reply["token"].(string)
	s.Require().NotEmpty(token)
	return username, token
}

func (s *MessagingSuite) TestLiveDeliveryAndNotifications() {
	t := s.T()
	s.Header(t, "Live delivery between two connected accounts")

	mentor, mentorToken := s.signup(t, "mentor")
	student, studentToken := s.signup(t, "student")

	mentorConn := s.Dial(t, mentor, mentorToken)
	defer mentorConn.Close()
	studentConn := s.Dial(t, student, studentToken)
	defer studentConn.Close()

	// When the student sends a message over the socket
	body := "could you review my cover letter?"
	s.Require().NoError(studentConn.WriteJSON(map[string]any{
		"type":    "send",
		"payload": map[string]string{"sender": student, "receiver": mentor, "body": body},
	}))

	// Then the mentor receives it live
	_ = mentorConn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var received map[string]any
	s.Require().NoError(mentorConn.ReadJSON(&received))
	s.Require().Equal("receive", received["type"])

	payload, _ := received["payload"].(map[string]any)
	s.Require().Equal(student, payload["sender"])
	s.Require().Equal(body, payload["body"])

	// And the student shows up in the mentor's notification feed
	status, reply := s.GetJSON(t, "/api/notifications", mentorToken)
	s.Require().Equal(http.StatusOK, status)
	s.Require().Contains(fmt.Sprint(reply["notifications"]), student)
}

func (s *MessagingSuite) TestOfflineReceiverKeepsHistory() {
	t := s.T()
	s.Header(t, "Offline receiver still gets durable history")

	mentor, mentorToken := s.signup(t, "mentor")
	student, studentToken := s.signup(t, "student")

	// When the student messages a mentor who never connected
	status, _ := s.PostJSON(t, "/api/messages", studentToken, map[string]string{
		"sender": student, "receiver": mentor, "body": "see you at the next session",
	})
	s.Require().Equal(http.StatusCreated, status)

	// Then the conversation is readable from either side
	path := fmt.Sprintf("/api/messages?sender=%s&receiver=%s", student, mentor)
	status, reply := s.GetJSON(t, path, mentorToken)
	s.Require().Equal(http.StatusOK, status)
	s.Require().Contains(fmt.Sprint(reply["messages"]), "see you at the next session")
}
