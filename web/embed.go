// Package web embeds the dashboard template and its static assets.
package web

import "embed"

// TemplatesFS holds the server-rendered HTML templates.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds the stylesheet and the form script.
//
//go:embed static/*
var StaticFS embed.FS
