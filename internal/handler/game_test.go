package handler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"dictionary-game-bot/internal/config"
	"dictionary-game-bot/internal/game"
	"dictionary-game-bot/internal/i18n"
	"dictionary-game-bot/internal/model"
	"dictionary-game-bot/internal/pkg/scheduler"
	"dictionary-game-bot/internal/repository/memstore"
)

const testChat = int64(-1001)

type sentMessage struct {
	to   string
	what interface{}
	opts []interface{}
	id   int
}

func (s sentMessage) text() string {
	text, _ := s.what.(string)
	return text
}

// mockMessenger hands out increasing message ids and records what was sent.
type mockMessenger struct {
	mock.Mock

	mu     sync.Mutex
	nextID int
	sent   []sentMessage
}

func (m *mockMessenger) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	args := m.Called(to.Recipient())
	if err := args.Error(0); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.sent = append(m.sent, sentMessage{to: to.Recipient(), what: what, opts: opts, id: m.nextID})
	msg := &tele.Message{ID: m.nextID}
	if _, ok := what.(*tele.Poll); ok {
		msg.Poll = &tele.Poll{ID: fmt.Sprintf("poll-%d", m.nextID)}
	}
	return msg, nil
}

func (m *mockMessenger) Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	args := m.Called(msg)
	return nil, args.Error(0)
}

func (m *mockMessenger) StopPoll(msg tele.Editable, opts ...interface{}) (*tele.Poll, error) {
	args := m.Called(msg)
	return nil, args.Error(0)
}

func (m *mockMessenger) ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error) {
	args := m.Called(user.Recipient())
	member, _ := args.Get(0).(*tele.ChatMember)
	return member, args.Error(1)
}

func (m *mockMessenger) messagesTo(to string) []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMessage
	for _, s := range m.sent {
		if s.to == to {
			out = append(out, s)
		}
	}
	return out
}

func (m *mockMessenger) last(to string) sentMessage {
	msgs := m.messagesTo(to)
	if len(msgs) == 0 {
		return sentMessage{}
	}
	return msgs[len(msgs)-1]
}

type handlerFixture struct {
	h         *GameHandler
	engine    *game.Engine
	messenger *mockMessenger
	sched     *scheduler.Scheduler
}

// newHandlerFixture builds a handler over an in-memory engine. sendErrors
// makes Send fail for the given recipients.
func newHandlerFixture(t *testing.T, nativePoll bool, sendErrors ...string) *handlerFixture {
	t.Helper()

	engineCfg := game.DefaultConfig()
	engineCfg.MinPlayers = 2
	engineCfg.MaxPlayers = 4
	engineCfg.NextRoundWait = time.Hour

	engine := game.NewEngine(engineCfg,
		memstore.NewGameRepository(),
		memstore.NewInteractionRegistry(),
		memstore.NewRoundArchive(),
		memstore.NewSettingsRepository(),
		game.WithShuffler(rand.New(rand.NewSource(7))),
	)

	m := &mockMessenger{}
	for _, to := range sendErrors {
		m.On("Send", to).Return(errors.New("telegram: Forbidden: bot can't initiate conversation with a user (403)"))
	}
	m.On("Send", mock.Anything).Return(nil)
	m.On("Edit", mock.Anything).Return(nil).Maybe()
	m.On("StopPoll", mock.Anything).Return(nil).Maybe()
	m.On("ChatMemberOf", mock.Anything).Return(nil, errors.New("member not found")).Maybe()

	cfg := &config.Config{Game: config.GameConfig{MaxButtonsInRow: 5, NativePoll: nativePoll}}
	sched := scheduler.New()
	t.Cleanup(sched.Stop)

	h := NewGameHandler(cfg, engine, m, sched)
	h.names.remember(&tele.User{ID: 100, FirstName: "Alice"})
	h.names.remember(&tele.User{ID: 200, FirstName: "Bob"})

	return &handlerFixture{h: h, engine: engine, messenger: m, sched: sched}
}

func (f *handlerFixture) snapshot(t *testing.T) *model.Game {
	t.Helper()
	g, err := f.engine.Snapshot(context.Background(), testChat)
	require.NoError(t, err)
	return g
}

// begin opens a game for Alice and Bob and starts the first round.
func (f *handlerFixture) begin(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	_, err := f.h.handle(ctx, game.CommandEvent{ChatID: testChat, UserID: 100, Command: game.CommandStart})
	require.NoError(t, err)
	joinID := f.snapshot(t).JoinMessageID
	require.NotZero(t, joinID)

	for _, userID := range []int64{100, 200} {
		_, err := f.h.handle(ctx, game.ButtonEvent{ChatID: testChat, UserID: userID, MessageID: joinID, Action: game.ButtonJoin})
		require.NoError(t, err)
	}
	_, err = f.h.handle(ctx, game.ButtonEvent{ChatID: testChat, UserID: 200, MessageID: joinID, Action: game.ButtonContinue})
	require.NoError(t, err)
}

func TestHandle_StartTracksJoinMessage(t *testing.T) {
	f := newHandlerFixture(t, false)

	_, err := f.h.handle(context.Background(), game.CommandEvent{ChatID: testChat, UserID: 100, Command: game.CommandStart})
	require.NoError(t, err)

	join := f.messenger.last("-1001")
	assert.Contains(t, join.text(), "Dictionary")
	require.Len(t, join.opts, 1)
	markup, ok := join.opts[0].(*tele.ReplyMarkup)
	require.True(t, ok)
	assert.Len(t, markup.InlineKeyboard[0], 3)

	assert.Equal(t, join.id, f.snapshot(t).JoinMessageID)
}

func TestHandle_StaleJoinButtonRejected(t *testing.T) {
	f := newHandlerFixture(t, false)
	ctx := context.Background()

	_, err := f.h.handle(ctx, game.CommandEvent{ChatID: testChat, UserID: 100, Command: game.CommandStart})
	require.NoError(t, err)

	_, err = f.h.handle(ctx, game.ButtonEvent{ChatID: testChat, UserID: 100, MessageID: 999, Action: game.ButtonJoin})
	assert.ErrorIs(t, err, game.ErrInvalidState)
	assert.Empty(t, f.snapshot(t).Players)
}

func TestHandle_RoundPromptsLeaderAndRoutesReply(t *testing.T) {
	f := newHandlerFixture(t, false)
	ctx := context.Background()
	f.begin(t)

	g := f.snapshot(t)
	assert.Equal(t, model.StatusQuestion, g.Status)
	assert.Contains(t, f.messenger.last("-1001").text(), "Alice is the leader")

	prompt := f.messenger.last("100")
	require.NotZero(t, prompt.id)
	assert.Contains(t, prompt.text(), "You are the leader")

	effects, err := f.h.handle(ctx, game.ReplyEvent{UserID: 100, ReplyToMessageID: prompt.id, Text: "gravity\nthe force that attracts masses"})
	require.NoError(t, err)
	assert.True(t, game.Has(effects, game.EffectWordAccepted))
	assert.Equal(t, "Word \"gravity\" saved.", f.h.replyConfirmation(ctx, 100, effects))

	assert.Equal(t, model.StatusAnswer, f.snapshot(t).Status)
	assert.Contains(t, f.messenger.last("200").text(), `The word is "gravity"`)
	assert.Contains(t, f.messenger.last("-1001").text(), "Waiting for: Bob")

	// the prompt was consumed
	_, err = f.h.handle(ctx, game.ReplyEvent{UserID: 100, ReplyToMessageID: prompt.id, Text: "again"})
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func TestHandle_ScoresListsMissingPlayers(t *testing.T) {
	f := newHandlerFixture(t, false)
	ctx := context.Background()
	f.begin(t)

	prompt := f.messenger.last("100")
	_, err := f.h.handle(ctx, game.ReplyEvent{UserID: 100, ReplyToMessageID: prompt.id, Text: "gravity\nthe force"})
	require.NoError(t, err)

	_, err = f.h.handle(ctx, game.CommandEvent{ChatID: testChat, UserID: 100, Command: game.CommandScores})
	require.NoError(t, err)
	assert.Contains(t, f.messenger.last("-1001").text(), "Waiting for: Bob")
}

func TestReplyConfirmation_ReplacedDefinition(t *testing.T) {
	f := newHandlerFixture(t, false)
	ctx := context.Background()

	saved := []game.Effect{{Kind: game.EffectDefinitionAccepted, ChatID: testChat, UserID: 200}}
	assert.Equal(t, "Definition saved.", f.h.replyConfirmation(ctx, 200, saved))

	replaced := []game.Effect{{Kind: game.EffectDefinitionAccepted, ChatID: testChat, UserID: 200, Changed: true}}
	assert.Equal(t, "Definition replaced.", f.h.replyConfirmation(ctx, 200, replaced))
	assert.Empty(t, f.h.replyConfirmation(ctx, 100, replaced))
}

func TestHandle_PollCloseSchedulesNextRound(t *testing.T) {
	f := newHandlerFixture(t, false)
	ctx := context.Background()
	f.begin(t)

	prompt := f.messenger.last("100")
	_, err := f.h.handle(ctx, game.ReplyEvent{UserID: 100, ReplyToMessageID: prompt.id, Text: "gravity\nthe force that attracts masses"})
	require.NoError(t, err)

	// Bob has a single outstanding prompt, so quoting it is optional
	effects, err := f.h.handle(ctx, game.ReplyEvent{UserID: 200, Text: "a kind of soup"})
	require.NoError(t, err)
	poll, ok := game.Find(effects, game.EffectPollOpened)
	require.True(t, ok)

	g := f.snapshot(t)
	require.Equal(t, model.StatusPoll, g.Status)
	pollMsg := f.messenger.last("-1001")
	assert.Equal(t, pollMsg.id, g.PollMessageID)
	assert.Contains(t, pollMsg.text(), `What does "gravity" mean?`)

	effects, err = f.h.handle(ctx, game.ButtonEvent{
		ChatID: testChat, UserID: 200, MessageID: g.PollMessageID, Action: game.ButtonVote, Position: poll.Answer,
	})
	require.NoError(t, err)
	assert.True(t, game.Has(effects, game.EffectPollClosed))
	assert.True(t, f.sched.Pending(testChat))

	resp := f.h.callbackResponse(i18n.Printer("en"), 200, effects)
	assert.Equal(t, "Vote saved.", resp.Text)

	f.h.advance(testChat)
	g = f.snapshot(t)
	assert.Equal(t, model.StatusQuestion, g.Status)
	leader, _ := g.Leader()
	assert.Equal(t, int64(200), leader)
	assert.Contains(t, f.messenger.last("200").text(), "You are the leader")

	// a second advance finds nothing to do
	f.h.advance(testChat)
	assert.Equal(t, model.StatusQuestion, f.snapshot(t).Status)

	// a later click on the closed poll still reveals its votes
	effects, err = f.h.handle(ctx, game.ButtonEvent{
		ChatID: testChat, UserID: 100, MessageID: pollMsg.id, Action: game.ButtonVote, Position: poll.Answer,
	})
	require.NoError(t, err)
	resp = f.h.callbackResponse(i18n.Printer("en"), 100, effects)
	assert.Equal(t, "Voted by: Bob", resp.Text)
	assert.True(t, resp.ShowAlert)
}

func TestHandle_ClickOnClosedPollStartsOverdueRound(t *testing.T) {
	f := newHandlerFixture(t, false)
	ctx := context.Background()
	f.begin(t)

	prompt := f.messenger.last("100")
	_, err := f.h.handle(ctx, game.ReplyEvent{UserID: 100, ReplyToMessageID: prompt.id, Text: "gravity\nthe force"})
	require.NoError(t, err)
	effects, err := f.h.handle(ctx, game.ReplyEvent{UserID: 200, Text: "a soup"})
	require.NoError(t, err)
	poll, _ := game.Find(effects, game.EffectPollOpened)
	pollID := f.snapshot(t).PollMessageID

	_, err = f.h.handle(ctx, game.ButtonEvent{ChatID: testChat, UserID: 200, MessageID: pollID, Action: game.ButtonVote, Position: poll.Answer})
	require.NoError(t, err)
	// the timer is lost, as after a restart
	f.sched.Cancel(testChat)

	effects, err = f.h.handle(ctx, game.ButtonEvent{ChatID: testChat, UserID: 100, MessageID: pollID, Action: game.ButtonVote, Position: poll.Answer})
	require.NoError(t, err)
	assert.True(t, game.Has(effects, game.EffectRoundStarted))
	assert.True(t, game.Has(effects, game.EffectVotesRevealed))
	assert.Equal(t, model.StatusQuestion, f.snapshot(t).Status)
	assert.Contains(t, f.messenger.last("200").text(), "You are the leader")
}

func TestHandle_StopCancelsScheduledRound(t *testing.T) {
	f := newHandlerFixture(t, false)
	ctx := context.Background()
	f.begin(t)

	prompt := f.messenger.last("100")
	_, err := f.h.handle(ctx, game.ReplyEvent{UserID: 100, ReplyToMessageID: prompt.id, Text: "gravity\nthe force"})
	require.NoError(t, err)
	effects, err := f.h.handle(ctx, game.ReplyEvent{UserID: 200, Text: "a soup"})
	require.NoError(t, err)
	poll, _ := game.Find(effects, game.EffectPollOpened)

	_, err = f.h.handle(ctx, game.ButtonEvent{
		ChatID: testChat, UserID: 200, MessageID: f.snapshot(t).PollMessageID, Action: game.ButtonVote, Position: poll.Answer,
	})
	require.NoError(t, err)
	require.True(t, f.sched.Pending(testChat))

	_, err = f.h.handle(ctx, game.CommandEvent{ChatID: testChat, UserID: 100, Command: game.CommandStop})
	require.NoError(t, err)
	assert.False(t, f.sched.Pending(testChat))
	assert.Contains(t, f.messenger.last("-1001").text(), "Game stopped.")
}

func TestHandle_NativePollAnswer(t *testing.T) {
	f := newHandlerFixture(t, true)
	ctx := context.Background()
	f.begin(t)

	prompt := f.messenger.last("100")
	_, err := f.h.handle(ctx, game.ReplyEvent{UserID: 100, ReplyToMessageID: prompt.id, Text: "gravity\nthe force"})
	require.NoError(t, err)
	effects, err := f.h.handle(ctx, game.ReplyEvent{UserID: 200, Text: "a soup"})
	require.NoError(t, err)
	poll, _ := game.Find(effects, game.EffectPollOpened)

	g := f.snapshot(t)
	require.NotEmpty(t, g.PollID)
	sent := f.messenger.messagesTo("-1001")
	var found bool
	for _, s := range sent {
		if p, ok := s.what.(*tele.Poll); ok {
			found = true
			assert.Len(t, p.Options, 2)
		}
	}
	assert.True(t, found)

	effects, err = f.h.handle(ctx, game.PollAnswerEvent{PollID: g.PollID, UserID: 200, Options: []int{poll.Answer}})
	require.NoError(t, err)
	assert.True(t, game.Has(effects, game.EffectPollClosed))
	f.messenger.AssertCalled(t, "StopPoll", storedMessage(testChat, g.PollMessageID))
}

func TestPrompt_BlockedUserNotifiesGroup(t *testing.T) {
	f := newHandlerFixture(t, false, "100")
	f.begin(t)

	assert.Empty(t, f.messenger.messagesTo("100"))
	assert.Contains(t, f.messenger.last("-1001").text(), "Alice, please start a private chat with me first.")

	// no prompt was registered for the leader
	_, err := f.h.handle(context.Background(), game.ReplyEvent{UserID: 100, Text: "gravity\nthe force"})
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func TestHandle_RepeatResendsJoinPanel(t *testing.T) {
	f := newHandlerFixture(t, false)
	ctx := context.Background()

	_, err := f.h.handle(ctx, game.CommandEvent{ChatID: testChat, UserID: 100, Command: game.CommandStart})
	require.NoError(t, err)
	first := f.snapshot(t).JoinMessageID

	_, err = f.h.handle(ctx, game.CommandEvent{ChatID: testChat, UserID: 100, Command: game.CommandRepeat})
	require.NoError(t, err)

	g := f.snapshot(t)
	assert.NotEqual(t, first, g.JoinMessageID)
	assert.Equal(t, f.messenger.last("-1001").id, g.JoinMessageID)

	// the old keyboard is stale now
	_, err = f.h.handle(ctx, game.ButtonEvent{ChatID: testChat, UserID: 100, MessageID: first, Action: game.ButtonJoin})
	assert.ErrorIs(t, err, game.ErrInvalidState)
}

func TestFormatStandings_Medals(t *testing.T) {
	f := newHandlerFixture(t, false)
	f.h.names.remember(&tele.User{ID: 300, FirstName: "Carol"})
	f.h.names.remember(&tele.User{ID: 400, Username: "dave"})
	f.h.names.remember(&tele.User{ID: 500, FirstName: "Eve"})

	text := f.h.formatStandings(i18n.Printer("en"), testChat, []game.Standing{
		{Rank: 1, Score: 7, UserIDs: []int64{100, 200}},
		{Rank: 2, Score: 5, UserIDs: []int64{300}},
		{Rank: 3, Score: 2, UserIDs: []int64{400}},
		{Rank: 4, Score: 0, UserIDs: []int64{500}},
	})

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "🥇 Alice, Bob: 7", lines[0])
	assert.Equal(t, "🥈 Carol: 5", lines[1])
	assert.Equal(t, "🥉 @dave: 2", lines[2])
	assert.Equal(t, "4. Eve: 0", lines[3])

	assert.Equal(t, "No scores yet.", f.h.formatStandings(i18n.Printer("en"), testChat, nil))
}

func TestNameBook_AsksChatOnce(t *testing.T) {
	m := &mockMessenger{}
	m.On("ChatMemberOf", "42").Return(&tele.ChatMember{User: &tele.User{ID: 42, FirstName: "Zed"}}, nil).Once()
	m.On("ChatMemberOf", "43").Return(nil, errors.New("user not found"))

	var names nameBook
	assert.Equal(t, "Zed", names.lookup(m, testChat, 42))
	assert.Equal(t, "Zed", names.lookup(m, testChat, 42))
	assert.Equal(t, "User43", names.lookup(m, testChat, 43))
	m.AssertNumberOfCalls(t, "ChatMemberOf", 2)
}

func TestErrorText(t *testing.T) {
	p := i18n.Printer("en")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", fmt.Errorf("%w: no game", game.ErrNotFound), "No game here. Use /start to begin."},
		{"state", fmt.Errorf("%w: vote", game.ErrInvalidState), "That is not possible right now."},
		{"operation", fmt.Errorf("%w: self vote", game.ErrInvalidOperation), "You can't do that."},
		{"ambiguous", fmt.Errorf("%w: two prompts", game.ErrAmbiguousInteraction), "Please reply directly to the message you are answering."},
		{"storage", errors.New("connection refused"), "Something went wrong, please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorText(p, tt.err, i18n.KeyErrNoGame))
		})
	}
}
