package factory

import (
	"time"

	"github.com/mcoot/scrimbot/internal/chat"
	"github.com/mcoot/scrimbot/internal/dependencies/mocks"
	"github.com/mcoot/scrimbot/internal/model"
	"github.com/mcoot/scrimbot/internal/storage/memory"
	"github.com/mcoot/scrimbot/internal/testutil"
)

// Channel and guild ids used by TestApp
const (
	TestBotID          = "1"
	TestGuildID        = "500"
	TestAdminChannel   = "chan-admin"
	TestLinkChannel    = "chan-link"
	TestResultsChannel = "chan-results"
	TestSoloChannel    = "chan-solo"
	TestDuoChannel     = "chan-duo"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MemoryStorage *memory.Storage
	MockGateway   *mocks.MockGateway
	MockClock     *mocks.MockClock
	MockIDs       *mocks.MockIDs
	MockTwitch    *mocks.MockTwitch
	MockYouTube   *mocks.MockYouTube
}

// NewTestApp creates an App on in-memory storage and mocked ports.
// SOLO and DUO are enabled, TRIO has no channel.
func NewTestApp() *TestApp {
	store := memory.New()
	gateway := mocks.NewMockGateway(TestBotID)
	gateway.BotPosition = 10
	gateway.GuildRoles = []chat.Role{{ID: TestGuildID, Name: "@everyone"}}
	clk := mocks.NewMockClock(time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC))
	idGen := mocks.NewMockIDs()
	twitch := mocks.NewMockTwitch()
	youtube := mocks.NewMockYouTube()

	modes := model.DefaultModes()
	modes[0].AnnounceChannelID = TestSoloChannel
	modes[1].AnnounceChannelID = TestDuoChannel

	app := New(Dependencies{
		Storage: store,
		Gateway: gateway,
		Twitch:  twitch,
		YouTube: youtube,
		Clock:   clk,
		IDs:     idGen,
		Logger:  testutil.NopLogger(),
	}, Settings{
		GuildID:             TestGuildID,
		AdminPanelChannelID: TestAdminChannel,
		LinkPanelChannelID:  TestLinkChannel,
		ResultsChannelID:    TestResultsChannel,
		Modes:               modes,
		ModePromptTimeout:   time.Second,
	})

	return &TestApp{
		App:           app,
		MemoryStorage: store,
		MockGateway:   gateway,
		MockClock:     clk,
		MockIDs:       idGen,
		MockTwitch:    twitch,
		MockYouTube:   youtube,
	}
}
