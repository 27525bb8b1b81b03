package config

type AppConfig struct {
	AllocatorConfig *AllocatorConfig
}

func New() *AppConfig {
	return &AppConfig{
		AllocatorConfig: NewAllocatorConfig(),
	}
}
