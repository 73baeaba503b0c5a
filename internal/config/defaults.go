package config

// SystemDefaults returns the built-in layout, server and telemetry settings.
func SystemDefaults() *Config {
	return &Config{
		Layout: LayoutConfig{
			Title:   "tabset",
			Initial: "overview",
			Groups: []GroupConfig{
				{
					ID:    "overview",
					Label: "Overview",
					Key:   "1",
					Panels: []PanelConfig{
						{
							ID:    "overview-intro",
							Title: "Overview",
							Body: "# tabset\n\nSwitch between groups of panels. " +
								"Exactly one group is visible at a time and its tab is highlighted.",
						},
					},
				},
				{
					ID:    "usage",
					Label: "Usage",
					Key:   "2",
					Panels: []PanelConfig{
						{
							ID:    "usage-keys",
							Title: "Keys",
							Body: "- `tab` / `shift+tab` move focus between tabs\n" +
								"- `enter` activates the focused tab\n" +
								"- `[` / `]` cycle groups\n" +
								"- `q` quits",
						},
						{
							ID:       "usage-config",
							Title:    "Config",
							Kind:     "code",
							Language: "yaml",
							Body: "layout:\n  initial: overview\n  groups:\n    - id: overview\n" +
								"      label: Overview\n      panels:\n        - id: intro\n          body: Hello\n",
						},
					},
				},
				{
					ID:    "about",
					Label: "About",
					Key:   "3",
					Panels: []PanelConfig{
						{
							ID:    "about-text",
							Title: "About",
							Kind:  "text",
							Body:  "tabset renders the same tab groups in a terminal and in a browser.",
						},
					},
				},
			},
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			ReadTimeout: "10s",
			Debounce:    "300ms",
		},
		Telemetry: TelemetryConfig{
			Endpoint:    "localhost:4317",
			Protocol:    "grpc",
			ServiceName: "tabset",
			SampleRate:  ptr(1.0),
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
