package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/tetraeducacao/leadtracker/internal/entity"
	"github.com/tetraeducacao/leadtracker/internal/infra/integration/jornada"
	"github.com/tetraeducacao/leadtracker/internal/logger"
)

// Consulta o webhook da jornada direto, sem subir o servidor, e mostra o payload cru e o lead normalizado.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Aviso: arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	value := flag.String("valor", "joao.silva@email.com", "nome, email ou telefone do lead")
	searchType := flag.String("tipo", "email", "nome, email ou telefone")
	flag.Parse()

	if !entity.SearchType(*searchType).IsValid() {
		log.Fatalf("❌ tipo inválido: %q (use nome, email ou telefone)", *searchType)
	}

	client := jornada.NewClient(os.Getenv("JORNADA_WEBHOOK_URL"), 30*time.Second, logger.New("debug", "text"))

	fmt.Println("🔄 Consultando webhook da jornada...")
	fmt.Printf("   URL: %s\n", client.URL())
	fmt.Printf("   Busca: %s = %s\n\n", *searchType, *value)

	raw, err := client.Lookup(context.Background(), *value, entity.SearchType(*searchType))
	if err != nil {
		log.Fatalf("Erro ao consultar webhook: %v", err)
	}

	pretty, _ := json.MarshalIndent(raw, "", "  ")
	fmt.Printf("📦 Resposta crua:\n%s\n\n", pretty)

	lead, err := jornada.Normalize(raw)
	if err != nil {
		log.Fatalf("Lead não normalizado: %v", err)
	}

	normalized, _ := json.MarshalIndent(lead, "", "  ")
	fmt.Printf("✅ Lead normalizado (progresso %d%%):\n%s\n", lead.Progress(), normalized)
}
