package config

type AllocatorConfig struct {
	Level     uint
	MinLevel  uint
	PoolBlock int
}

func NewAllocatorConfig() *AllocatorConfig {
	return &AllocatorConfig{
		Level:     20,
		MinLevel:  6,
		PoolBlock: 256,
	}
}
