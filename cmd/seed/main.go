package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"fieldops-assignment/internal/config"
	pg "fieldops-assignment/internal/infra/db/postgres"
)

// Seeds a handful of agents and pending cases for local runs.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	agents := flag.Int("agents", 5, "number of agents to create")
	cases := flag.Int("cases", 50, "number of pending cases to create")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	var existing int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM agents;`).Scan(&existing); err != nil {
		log.Fatalf("count agents: %v", err)
	}
	if existing > 0 {
		fmt.Printf("%d agents already present. No changes.\n", existing)
		return
	}

	now := time.Now()
	for i := 0; i < *agents; i++ {
		id := uuid.NewString()
		name := fmt.Sprintf("Agent %02d", i+1)
		if _, err := pool.Exec(ctx,
			`INSERT INTO agents (id, name, active, role) VALUES ($1,$2,true,'field_agent');`,
			id, name); err != nil {
			log.Fatalf("insert agent: %v", err)
		}
		fmt.Printf("  + agent %s (%s)\n", name, id)
	}

	for i := 0; i < *cases; i++ {
		id := uuid.NewString()
		number := fmt.Sprintf("CASE-%05d", i+1)
		if _, err := pool.Exec(ctx,
			`INSERT INTO cases (id, case_number, assigned_agent_id, status, created_at, updated_at)
			 VALUES ($1,$2,NULL,'pending',$3,$3);`,
			id, number, now); err != nil {
			log.Fatalf("insert case: %v", err)
		}
	}
	fmt.Printf("seeded %d agents and %d pending cases\n", *agents, *cases)
}
