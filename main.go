package main

import (
	r "math/rand"
	"time"

	"buddy-alloc/config"
	"buddy-alloc/pkg/buddy"
	"buddy-alloc/pkg/pool"
	"buddy-alloc/util/helpers"
	"buddy-alloc/util/logger"
)

var seed = time.Now().UnixMilli()
var rand = r.New(r.NewSource(seed))

func main() {
	configs := config.New()
	logger.L.Infof("seed: %v", seed)

	a, err := buddy.NewMmap(configs.AllocatorConfig.Level, configs.AllocatorConfig.MinLevel)
	if err != nil {
		logger.L.Fatal(err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.L.Errorf("error on closing allocator: %v", err)
		}
	}()

	logger.L.Infof("pool: %v bytes, %v free", a.Len(), a.Available())

	live := [][]byte{}
	allocs, frees, failures := 0, 0, 0

	for i := 0; i < 100000; i++ {
		if len(live) > 0 && rand.Intn(2) == 0 {
			j := rand.Intn(len(live))
			a.Free(live[j])
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
			frees++
			continue
		}

		block, err := a.Alloc(16 + rand.Intn(4096))
		if err != nil {
			failures++
			continue
		}
		live = append(live, block)
		allocs++
	}

	for _, block := range live {
		a.Free(block)
	}

	logger.L.Infof("allocs: %v, frees: %v, failures: %v", allocs, frees, failures)
	logger.L.Infof("after drain: %v bytes free", a.Available())

	p, err := pool.New(a, configs.AllocatorConfig.PoolBlock)
	if err != nil {
		logger.L.Fatal(err)
	}

	count := helpers.Min(1024, a.Len()/p.BlockSize()/4)
	blocks := make([][]byte, 0, count)
	for i := 0; i < cap(blocks); i++ {
		block, err := p.Get()
		if err != nil {
			logger.L.Fatal(err)
		}
		blocks = append(blocks, block)
	}
	for _, block := range blocks {
		p.Put(block)
	}
	p.Release()

	logger.L.Infof("pool drained: %v live, %v bytes free", p.Live(), a.Available())
}
