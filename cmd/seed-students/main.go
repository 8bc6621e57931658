package main

import (
	"context"
	"fmt"
	"time"

	"github.com/examsecure/examsecure-backend/internal/config"
	"github.com/examsecure/examsecure-backend/internal/database"
	"github.com/examsecure/examsecure-backend/internal/logger"
	"github.com/examsecure/examsecure-backend/internal/model"
	"github.com/examsecure/examsecure-backend/internal/repository"
	"github.com/examsecure/examsecure-backend/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentRepo := repository.NewStudentRepository(pool)
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	authService := service.NewAuthService(cfg, rdb)
	studentService := service.NewStudentService(studentRepo, authService, log)

	fmt.Println("=== Seeding 50 Students ===")

	names := []string{
		"Alice Johnson", "Ben Carter", "Carla Mendes", "Daniel Okoye", "Elena Petrova",
		"Felix Wagner", "Grace Liu", "Hassan Ali", "Ines Moreau", "Jonas Berg",
		"Kavya Nair", "Liam O'Brien", "Mina Tanaka", "Noah Fischer", "Olivia Santos",
		"Pavel Novak", "Quinn Harper", "Rosa Alvarez", "Samir Khan", "Tara Singh",
		"Umar Farouk", "Vera Kovacs", "Wendy Chang", "Xavier Dupont", "Yara Haddad",
		"Zane Miller", "Amara Diallo", "Bruno Costa", "Chloe Martin", "David Kim",
		"Esther Adeyemi", "Femke de Vries", "Gabriel Rossi", "Hana Suzuki", "Ivan Sokolov",
		"Julia Nowak", "Kenji Sato", "Leila Rahimi", "Marco Bianchi", "Nadia Ahmed",
		"Oscar Lindqvist", "Priya Sharma", "Ravi Patel", "Sofia Garcia", "Tomas Eriksen",
		"Uma Krishnan", "Victor Hugo", "Willa Nilsson", "Yusuf Demir", "Zofia Kowalska",
	}

	successCount := 0
	for i := 0; i < 50; i++ {
		req := &model.CreateStudentRequest{
			Name:     names[i],
			Email:    fmt.Sprintf("student%02d@example.com", i+1),
			Password: "password123",
		}

		student, err := studentService.Create(ctx, req)
		if err != nil {
			fmt.Printf("Error creating student %s (%s): %v\n", req.Name, req.Email, err)
		} else {
			successCount++
			if (i+1)%10 == 0 {
				fmt.Printf("Created %d students (last ID %d)...\n", i+1, student.ID)
			}
		}
	}

	fmt.Printf("\nSeed completed! Successfully added %d/50 students.\n", successCount)
}
