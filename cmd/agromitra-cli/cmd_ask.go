package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agromitra/agromitra/internal/engine"
)

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Advisory queries",
	}
	cmd.AddCommand(askWeatherCmd())
	cmd.AddCommand(askCropsCmd())
	cmd.AddCommand(askPricesCmd())
	cmd.AddCommand(askSchemesCmd())
	return cmd
}

func askWeatherCmd() *cobra.Command {
	var district string
	var days int

	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Weather forecast with advisories",
		Run: func(cmd *cobra.Command, args []string) {
			result, err := advisor.WeatherForecast(context.Background(), engine.WeatherRequest{
				District: district,
				Days:     days,
			})
			if err != nil {
				fatal("weather forecast", err)
			}
			output(result, "")
		},
	}
	cmd.Flags().StringVar(&district, "district", "", "District name (required)")
	cmd.Flags().IntVar(&days, "days", 3, "Forecast days")
	_ = cmd.MarkFlagRequired("district")
	return cmd
}

func askCropsCmd() *cobra.Command {
	var district, soil, season string

	cmd := &cobra.Command{
		Use:   "crops",
		Short: "Ranked crop recommendations with cultivation snippets",
		Run: func(cmd *cobra.Command, args []string) {
			result, err := advisor.CropRecommendations(context.Background(), engine.CropRequest{
				District: district,
				SoilType: soil,
				Season:   season,
			})
			if err != nil {
				fatal("crop recommendations", err)
			}
			output(result, "")
		},
	}
	cmd.Flags().StringVar(&district, "district", "", "District name (required)")
	cmd.Flags().StringVar(&soil, "soil", "", "Soil type (required)")
	cmd.Flags().StringVar(&season, "season", "", "Season (required)")
	_ = cmd.MarkFlagRequired("district")
	_ = cmd.MarkFlagRequired("soil")
	_ = cmd.MarkFlagRequired("season")
	return cmd
}

func askPricesCmd() *cobra.Command {
	var crop, area string
	var days int

	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Market price analysis for a crop",
		Run: func(cmd *cobra.Command, args []string) {
			result, err := advisor.MarketPrices(context.Background(), engine.MarketRequest{
				Crop:       crop,
				Days:       days,
				MarketArea: area,
			})
			if err != nil {
				fatal("market prices", err)
			}
			output(result, "")
		},
	}
	cmd.Flags().StringVar(&crop, "crop", "", "Crop name (required)")
	cmd.Flags().IntVar(&days, "days", 30, "Analysis window in days")
	cmd.Flags().StringVar(&area, "market-area", "", "Market area (optional)")
	_ = cmd.MarkFlagRequired("crop")
	return cmd
}

func askSchemesCmd() *cobra.Command {
	var farmerType, cropType, state string

	cmd := &cobra.Command{
		Use:   "schemes",
		Short: "Government scheme lookup",
		Run: func(cmd *cobra.Command, args []string) {
			result, err := advisor.GovernmentSchemes(context.Background(), engine.SchemeRequest{
				FarmerType: farmerType,
				CropType:   cropType,
				State:      state,
			})
			if err != nil {
				fatal("scheme lookup", err)
			}
			output(result, "")
		},
	}
	cmd.Flags().StringVar(&farmerType, "farmer-type", "all", "Farmer type filter")
	cmd.Flags().StringVar(&cropType, "crop-type", "all", "Crop type filter")
	cmd.Flags().StringVar(&state, "state", "all", "State filter")
	return cmd
}
