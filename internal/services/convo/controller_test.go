// File: internal/services/convo/controller_test.go
package convo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personachat/internal/domain"
	"personachat/internal/services"
	"personachat/internal/services/geo"
	"personachat/internal/services/moderation"
	"personachat/internal/services/tools"
)

// fakeStore is an in-memory state.Store tracking save counts.
type fakeStore struct {
	mu           sync.Mutex
	profiles     map[uint]*domain.UserProfile
	chats        map[uint]map[string]*domain.Chat
	profileSaves int
	chatSaves    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles: map[uint]*domain.UserProfile{},
		chats:    map[uint]map[string]*domain.Chat{},
	}
}

func (s *fakeStore) LoadProfile(_ context.Context, userID uint) (*domain.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[userID]; ok {
		return p, nil
	}
	return domain.NewUserProfile(), nil
}

func (s *fakeStore) SaveProfile(_ context.Context, userID uint, profile *domain.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = profile
	s.profileSaves++
	return nil
}

func (s *fakeStore) LoadChats(_ context.Context, userID uint) (map[string]*domain.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.chats[userID]; ok {
		return c, nil
	}
	return map[string]*domain.Chat{}, nil
}

func (s *fakeStore) SaveChats(_ context.Context, userID uint, chats map[string]*domain.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[userID] = chats
	s.chatSaves++
	return nil
}

// fakeProvider pops scripted replies and records every transcript it saw.
type fakeProvider struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	seen    [][]domain.Turn
}

func (p *fakeProvider) Complete(_ context.Context, turns []domain.Turn) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	copied := make([]domain.Turn, len(turns))
	copy(copied, turns)
	p.seen = append(p.seen, copied)

	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		if err != nil {
			return "", err
		}
	}
	if len(p.replies) == 0 {
		return "ok", nil
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return reply, nil
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

type fakeLocator struct {
	loc *geo.Location
	err error
}

func (l *fakeLocator) Locate(_ context.Context) (*geo.Location, error) {
	return l.loc, l.err
}

type controllerFixture struct {
	controller *Controller
	store      *fakeStore
	provider   *fakeProvider
	proxy      *httptest.Server
	chatID     string
}

func newFixture(t *testing.T, provider *fakeProvider) *controllerFixture {
	t.Helper()
	return newFixtureWithLocator(t, provider, &fakeLocator{err: geo.ErrDenied})
}

func newFixtureWithLocator(t *testing.T, provider *fakeProvider, locator geo.Locator) *controllerFixture {
	t.Helper()

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/weather":
			fmt.Fprintf(w, `{"temp":"70°F","condition":"Clear","city":"%s"}`, r.URL.Query().Get("city"))
		default:
			fmt.Fprint(w, `{"ok":true}`)
		}
	}))
	t.Cleanup(proxy.Close)

	store := newFakeStore()
	logger := &services.NoOpLogger{}
	executor := tools.NewExecutor(tools.NewProxyClient(proxy.URL), tools.NewThemeState(), logger)
	gate := moderation.NewGate(moderation.DefaultPatterns(), logger)

	controller, err := NewController(DefaultConfig(), store, provider, executor, gate,
		locator, logger)
	require.NoError(t, err)
	controller.sleep = func(time.Duration) {}
	controller.jitter = func(time.Duration) time.Duration { return 0 }

	chat, _, err := controller.CreateChat(context.Background(), 1, &domain.Bot{
		ID:           "bot-1",
		Name:         "Test Persona",
		SystemPrompt: "You are a chill Roblox persona.",
	})
	require.NoError(t, err)

	return &controllerFixture{
		controller: controller,
		store:      store,
		provider:   provider,
		proxy:      proxy,
		chatID:     chat.ID,
	}
}

func (f *controllerFixture) chat(t *testing.T) *domain.Chat {
	t.Helper()
	chat, err := f.controller.Chat(context.Background(), 1, f.chatID)
	require.NoError(t, err)
	return chat
}

func TestSendMessagePlainReply(t *testing.T) {
	f := newFixture(t, &fakeProvider{replies: []string{"hey! what's good?"}})

	delivered, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "yo")

	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, domain.MessageReceived, delivered[0].Type)
	assert.Equal(t, "hey! what's good?", delivered[0].Text)

	chat := f.chat(t)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, domain.MessageSent, chat.Messages[0].Type)
	require.NotNil(t, chat.Messages[0].ReadAt)

	require.Len(t, chat.Conversation, 3)
	assert.Equal(t, domain.RoleSystem, chat.Conversation[0].Role)
	assert.Equal(t, domain.RoleUser, chat.Conversation[1].Role)
	assert.Equal(t, domain.RoleAssistant, chat.Conversation[2].Role)

	profile, err := f.controller.Profile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.MessageCount)
}

func TestSendMessageChunksLongReply(t *testing.T) {
	long := "First bit of the reply lands here. Second bit follows right after it. Third bit closes out the whole thought nicely."
	f := newFixture(t, &fakeProvider{replies: []string{long}})

	delivered, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "tell me something")

	require.NoError(t, err)
	require.Greater(t, len(delivered), 1)

	var joined []string
	for _, msg := range delivered {
		joined = append(joined, msg.Text)
	}
	assert.Contains(t, strings.Join(joined, " "), "Third bit")

	// Raw assistant turn keeps the reply whole.
	chat := f.chat(t)
	assert.Equal(t, long, chat.Conversation[len(chat.Conversation)-1].Content)
}

func TestSendMessageToolLoop(t *testing.T) {
	f := newFixture(t, &fakeProvider{replies: []string{
		"one sec [TOOL:weather city=Tokyo]",
		"it's 70°F and clear in Tokyo rn",
	}})

	delivered, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "weather in tokyo?")

	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, "it's 70°F and clear in Tokyo rn", delivered[0].Text)
	assert.Equal(t, 2, f.provider.calls())

	chat := f.chat(t)
	var toolTurn *domain.Turn
	for i := range chat.Conversation {
		if strings.HasPrefix(chat.Conversation[i].Content, "Tool results: ") {
			toolTurn = &chat.Conversation[i]
		}
	}
	require.NotNil(t, toolTurn)
	assert.Equal(t, domain.RoleUser, toolTurn.Role)
	assert.Contains(t, toolTurn.Content, "weather: {")
	assert.Contains(t, toolTurn.Content, `"city":"Tokyo"`)

	// Second completion saw the tool results.
	secondCall := f.provider.seen[1]
	assert.Contains(t, secondCall[len(secondCall)-1].Content, "Tool results: ")
}

func TestSendMessageSecondReplyToolSyntaxStaysLiteral(t *testing.T) {
	f := newFixture(t, &fakeProvider{replies: []string{
		"[TOOL:joke]",
		"here's one [TOOL:joke] haha",
	}})

	delivered, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "tell me a joke")

	require.NoError(t, err)
	// Exactly two completions: tool syntax in the follow-up never re-enters
	// the loop.
	assert.Equal(t, 2, f.provider.calls())
	require.Len(t, delivered, 1)
	assert.Equal(t, "here's one  haha", delivered[0].Text)
}

func TestSendMessageMultipleToolsOneTurn(t *testing.T) {
	f := newFixture(t, &fakeProvider{replies: []string{
		"[TOOL:weather city=Paris] [TOOL:joke]",
		"done",
	}})

	_, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "weather and a joke")

	require.NoError(t, err)
	chat := f.chat(t)
	var toolContent string
	for _, turn := range chat.Conversation {
		if strings.HasPrefix(turn.Content, "Tool results: ") {
			toolContent = turn.Content
		}
	}
	require.NotEmpty(t, toolContent)
	assert.Contains(t, toolContent, "weather: {")
	assert.Contains(t, toolContent, " | joke: {")
}

func TestSendMessageInternalCommands(t *testing.T) {
	f := newFixture(t, &fakeProvider{replies: []string{
		"[INTERNAL:remember fact=plays_basketball] [INTERNAL:mood mood=hyped] [INTERNAL:note note=asked_about_moods] got it!",
	}})

	delivered, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "i play basketball")

	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, "got it!", delivered[0].Text)

	profile, err := f.controller.Profile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"plays_basketball"}, profile.Facts)
	assert.Equal(t, "hyped", profile.Mood)

	chat := f.chat(t)
	require.Len(t, chat.Notes, 1)
	assert.Equal(t, "asked_about_moods", chat.Notes[0].Text)
}

func TestSendMessageReactionAppliesToSentMessage(t *testing.T) {
	f := newFixture(t, &fakeProvider{replies: []string{"[react:❤️] aww thanks"}})

	_, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "you're the best")

	require.NoError(t, err)
	chat := f.chat(t)
	require.GreaterOrEqual(t, len(chat.Messages), 2)
	assert.Equal(t, domain.MessageSent, chat.Messages[0].Type)
	assert.Equal(t, "❤️", chat.Messages[0].Reaction)
	assert.Equal(t, "aww thanks", chat.Messages[1].Text)
}

func TestSendMessageContextInjection(t *testing.T) {
	provider := &fakeProvider{replies: []string{"first", "second"}}
	f := newFixture(t, provider)

	// Seed profile memory and a note through one turn.
	_, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "hi")
	require.NoError(t, err)

	sess, err := f.controller.getSession(context.Background(), 1)
	require.NoError(t, err)
	sess.turnMu.Lock()
	sess.profile.Name = "Jordan"
	sess.profile.Mood = "hyped"
	sess.profile.Remember("loves_pizza")
	sess.chats[f.chatID].AddNote("ordered pizza earlier", time.Now())
	sess.turnMu.Unlock()

	_, err = f.controller.SendMessage(context.Background(), 1, f.chatID, "what do i like?")
	require.NoError(t, err)

	require.Equal(t, 2, provider.calls())
	system := provider.seen[1][0]
	assert.Equal(t, domain.RoleSystem, system.Role)
	assert.Contains(t, system.Content, "USER CONTEXT (remembered facts about this user): loves_pizza")
	assert.Contains(t, system.Content, "User's name: Jordan")
	assert.Contains(t, system.Content, "Current mood seems: hyped")
	assert.Contains(t, system.Content, "CHAT NOTES (things noted in this specific conversation): ordered pizza earlier")

	// The stored transcript itself stays clean of injections.
	assert.Equal(t, "You are a chill Roblox persona.", f.chat(t).Conversation[0].Content)
}

func TestSendMessageNeutralMoodNotInjected(t *testing.T) {
	provider := &fakeProvider{replies: []string{"sup"}}
	f := newFixture(t, provider)

	_, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "hello")
	require.NoError(t, err)

	assert.NotContains(t, provider.seen[0][0].Content, "Current mood seems")
}

func TestSendMessageUpstreamFailureApologizes(t *testing.T) {
	provider := &fakeProvider{errs: []error{errors.New("upstream 500")}}
	f := newFixture(t, provider)

	delivered, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "hey")

	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, "my bad something broke lol", delivered[0].Text)
	assert.Equal(t, domain.MessageReceived, delivered[0].Type)

	chat := f.chat(t)
	last := chat.Conversation[len(chat.Conversation)-1]
	assert.Equal(t, domain.RoleAssistant, last.Role)
	assert.Equal(t, "my bad something broke lol", last.Content)
}

func TestSendMessageSecondCompletionFailureApologizes(t *testing.T) {
	provider := &fakeProvider{
		replies: []string{"[TOOL:joke]"},
		errs:    []error{nil, errors.New("upstream 500")},
	}
	f := newFixture(t, provider)

	delivered, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "joke pls")

	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, "my bad something broke lol", delivered[0].Text)
}

func TestSendMessageModerationWarning(t *testing.T) {
	provider := &fakeProvider{}
	f := newFixture(t, provider)

	delivered, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "kys")

	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, "that's not cool man. warning 1/3", delivered[0].Text)
	assert.Zero(t, provider.calls())

	chat := f.chat(t)
	// Blocked text never reaches the transcript; only the warning bubble.
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, domain.MessageReceived, chat.Messages[0].Type)
	require.Len(t, chat.Conversation, 1)

	profile, err := f.controller.Profile(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, profile.MessageCount)
}

func TestSendMessageSuspensionRejects(t *testing.T) {
	provider := &fakeProvider{}
	f := newFixture(t, provider)

	for _, text := range []string{"kys", "kill yourself", "neck yourself"} {
		_, err := f.controller.SendMessage(context.Background(), 1, f.chatID, text)
		require.NoError(t, err)
	}

	before := len(f.chat(t).Messages)
	_, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "hello?")

	var suspended *SuspendedError
	require.ErrorAs(t, err, &suspended)
	assert.Equal(t, 60, suspended.RemainingMinutes())
	assert.Zero(t, provider.calls())
	assert.Len(t, f.chat(t).Messages, before)
}

func TestSendMessageSuspensionExpires(t *testing.T) {
	provider := &fakeProvider{replies: []string{"welcome back"}}
	f := newFixture(t, provider)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.controller.now = func() time.Time { return base }

	for _, text := range []string{"kys", "kill yourself", "neck yourself"} {
		_, err := f.controller.SendMessage(context.Background(), 1, f.chatID, text)
		require.NoError(t, err)
	}

	f.controller.now = func() time.Time { return base.Add(61 * time.Minute) }
	delivered, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "my bad, i'm chill now")

	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, "welcome back", delivered[0].Text)

	profile, err := f.controller.Profile(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, profile.Suspended)
}

func TestSendMessageBusyRejects(t *testing.T) {
	f := newFixture(t, &fakeProvider{})

	sess, err := f.controller.getSession(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, sess.tryAcquire())
	defer sess.release()

	_, err = f.controller.SendMessage(context.Background(), 1, f.chatID, "hello")
	assert.ErrorIs(t, err, ErrBusy)
}

func TestSendMessageUnknownChat(t *testing.T) {
	f := newFixture(t, &fakeProvider{})

	_, err := f.controller.SendMessage(context.Background(), 1, "nope", "hello")
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestSendMessageEmptyTextRejected(t *testing.T) {
	f := newFixture(t, &fakeProvider{})

	_, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "   ")
	assert.Error(t, err)
}

func TestCreateChatDeduplicatesPerBot(t *testing.T) {
	f := newFixture(t, &fakeProvider{})
	bot := &domain.Bot{ID: "bot-1", SystemPrompt: "unused"}

	chat, existing, err := f.controller.CreateChat(context.Background(), 1, bot)

	require.NoError(t, err)
	assert.True(t, existing)
	assert.Equal(t, f.chatID, chat.ID)
}

func TestDeleteChat(t *testing.T) {
	f := newFixture(t, &fakeProvider{})

	require.NoError(t, f.controller.DeleteChat(context.Background(), 1, f.chatID))

	_, err := f.controller.Chat(context.Background(), 1, f.chatID)
	assert.ErrorIs(t, err, ErrChatNotFound)

	assert.ErrorIs(t, f.controller.DeleteChat(context.Background(), 1, f.chatID), ErrChatNotFound)
}

func TestAskLocationGrantRunsWeatherFlow(t *testing.T) {
	provider := &fakeProvider{replies: []string{
		"[INTERNAL:asklocation] lemme check where you are",
		"it's 70°F and clear by you rn",
	}}
	f := newFixtureWithLocator(t, provider, &fakeLocator{loc: &geo.Location{
		City:     "Paris",
		Country:  "France",
		Timezone: "Europe/Paris",
	}})

	delivered, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "weather here?")
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, "lemme check where you are", delivered[0].Text)

	// The location flow runs detached after the triggering turn finishes.
	require.Eventually(t, func() bool {
		chat := f.chat(t)
		last := chat.Messages[len(chat.Messages)-1]
		return last.Text == "it's 70°F and clear by you rn"
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, f.provider.calls())

	chat := f.chat(t)
	var sawGrant, sawAutoFetch bool
	for _, turn := range chat.Conversation {
		if turn.Role == domain.RoleSystem &&
			turn.Content == "User's location: Paris, France. Now automatically proceed with their weather/time request using this location." {
			sawGrant = true
		}
		if turn.Role == domain.RoleUser && strings.HasPrefix(turn.Content, "[Auto-fetched weather for Paris]: ") {
			sawAutoFetch = true
			assert.Contains(t, turn.Content, `"city":"Paris"`)
		}
	}
	assert.True(t, sawGrant)
	assert.True(t, sawAutoFetch)
}

func TestAskLocationDeniedDeliversFixedMessage(t *testing.T) {
	provider := &fakeProvider{replies: []string{"[INTERNAL:asklocation] one sec"}}
	f := newFixture(t, provider)

	_, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "weather here?")
	require.NoError(t, err)

	denied := DefaultConfig().LocationDeniedMessage
	require.Eventually(t, func() bool {
		chat := f.chat(t)
		last := chat.Messages[len(chat.Messages)-1]
		return last.Type == domain.MessageReceived && last.Text == denied
	}, 2*time.Second, 10*time.Millisecond)

	// Denial never triggers another completion.
	assert.Equal(t, 1, f.provider.calls())

	chat := f.chat(t)
	var sawDenyNote bool
	for _, turn := range chat.Conversation {
		if turn.Role == domain.RoleSystem && turn.Content == "User denied location access" {
			sawDenyNote = true
		}
	}
	assert.True(t, sawDenyNote)
	assert.Equal(t, denied, chat.Conversation[len(chat.Conversation)-1].Content)
}

func TestChatReturnsSnapshot(t *testing.T) {
	f := newFixture(t, &fakeProvider{replies: []string{"hey"}})

	before, err := f.controller.Chat(context.Background(), 1, f.chatID)
	require.NoError(t, err)
	require.Empty(t, before.Messages)

	_, err = f.controller.SendMessage(context.Background(), 1, f.chatID, "yo")
	require.NoError(t, err)

	// The earlier snapshot is untouched by the turn.
	assert.Empty(t, before.Messages)
	assert.Len(t, before.Conversation, 1)

	// Mutating a snapshot never reaches the live session.
	after := f.chat(t)
	after.Messages = nil
	after.Conversation[0].Content = "scribbled over"
	fresh := f.chat(t)
	assert.Len(t, fresh.Messages, 2)
	assert.Equal(t, "You are a chill Roblox persona.", fresh.Conversation[0].Content)
}

func TestProfileReturnsSnapshot(t *testing.T) {
	f := newFixture(t, &fakeProvider{})

	profile, err := f.controller.Profile(context.Background(), 1)
	require.NoError(t, err)
	profile.Mood = "scribbled"
	profile.Facts = append(profile.Facts, "scribbled")

	fresh, err := f.controller.Profile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "neutral", fresh.Mood)
	assert.Empty(t, fresh.Facts)
}

func TestChatEncodableDuringActiveTurn(t *testing.T) {
	f := newFixture(t, &fakeProvider{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			_, err := f.controller.SendMessage(context.Background(), 1, f.chatID, "ping")
			assert.NoError(t, err)
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
			chat, err := f.controller.Chat(context.Background(), 1, f.chatID)
			require.NoError(t, err)
			_, err = json.Marshal(chat)
			require.NoError(t, err)
		}
	}
}

func TestChatsSortedByActivity(t *testing.T) {
	f := newFixture(t, &fakeProvider{replies: []string{"hi", "hi"}})

	second, _, err := f.controller.CreateChat(context.Background(), 1, &domain.Bot{
		ID:           "bot-2",
		SystemPrompt: "Another persona.",
	})
	require.NoError(t, err)

	_, err = f.controller.SendMessage(context.Background(), 1, f.chatID, "bump the first chat")
	require.NoError(t, err)

	chats, err := f.controller.Chats(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, f.chatID, chats[0].ID)
	assert.Equal(t, second.ID, chats[1].ID)
}
