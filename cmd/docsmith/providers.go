package main

// Provider adapters register themselves via init.
import (
	_ "github.com/docsmith/docsmith/internal/adapter/anthropic"
	_ "github.com/docsmith/docsmith/internal/adapter/openaicompat"
)
