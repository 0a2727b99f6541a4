package app

import (
	"strings"

	"github.com/hokkyo/cpadash-backend/internal/platform/logger"
	"github.com/hokkyo/cpadash-backend/internal/utils"
)

type Config struct {
	Port        string
	CORSOrigins []string
	// DisplayTZOffsetHours anchors "today" when a request omits date_key. The
	// app is deployed for one audience, so one fixed offset is enough.
	DisplayTZOffsetHours int
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	origins := utils.GetEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173", log)
	tzOffset := utils.GetEnvAsInt("DISPLAY_TZ_OFFSET_HOURS", 9, log)
	return Config{
		Port:                 port,
		CORSOrigins:          strings.Split(origins, ","),
		DisplayTZOffsetHours: tzOffset,
	}
}
