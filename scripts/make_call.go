// Command make_call places an outbound test call through the configured
// Twilio account. The call posts back to the voice webhook, so the answering
// side runs the normal greeting and turn loop.
//
//	go run scripts/make_call.go -from=+15550001111 -to=+15550002222
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/voxlane/voxlane/pkg/configutil"
	"github.com/voxlane/voxlane/pkg/transports"
	twiliotransport "github.com/voxlane/voxlane/pkg/transports/twilio"
)

type transportConfig struct {
	Transport struct {
		Provider string         `mapstructure:"provider"`
		Settings map[string]any `mapstructure:"settings"`
	} `mapstructure:"transport"`
}

type twilioSettings struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	PublicURL  string `mapstructure:"public_url"`
	VoicePath  string `mapstructure:"voice_path"`
}

func main() {
	configPath := flag.String("config", "examples/receptionist/config.yaml", "")
	from := flag.String("from", "", "")
	to := flag.String("to", "", "")
	voiceURL := flag.String("voice_url", "", "")
	sendDigits := flag.String("send_digits", "", "")
	flag.Parse()
	if *from == "" || *to == "" {
		fmt.Println("usage: make_call -from=+123 -to=+456 [-config=...]")
		os.Exit(1)
	}
	cfg, err := loadTransportConfig(*configPath)
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(1)
	}
	var settings twilioSettings
	if err := configutil.DecodeSettings(cfg.Transport.Settings, &settings); err != nil {
		fmt.Println("settings error:", err)
		os.Exit(1)
	}
	dialer := twiliotransport.NewDialer(twiliotransport.Config{
		AccountSID: settings.AccountSID,
		AuthToken:  settings.AuthToken,
		PublicURL:  settings.PublicURL,
		VoicePath:  settings.VoicePath,
	})
	callSID, err := dialer.DialWithOptions(context.Background(), *to, *from, *voiceURL,
		transports.DialOptions{SendDigits: *sendDigits})
	if err != nil {
		fmt.Println("call error:", err)
		os.Exit(1)
	}
	fmt.Println("call_sid:", callSID)
}

func loadTransportConfig(path string) (transportConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return transportConfig{}, err
	}
	var cfg transportConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return transportConfig{}, err
	}
	return cfg, nil
}
