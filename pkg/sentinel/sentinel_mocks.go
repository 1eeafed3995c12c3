package sentinel

//go:generate moq -pkg mocks -out ./mocks/channel_mock.go . ChannelI

//go:generate moq -pkg mocks -out ./mocks/orchestrator_mock.go . OrchestratorI
