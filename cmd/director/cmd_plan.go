package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/director/models"
	"github.com/1broseidon/director/session"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Create a production plan and print it as YAML",
	RunE:  runPlan,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Plan, confirm and render an image",
	Long:  `Create a plan, execute it immediately and write the generated image to --out.`,
	RunE:  runGenerate,
}

func init() {
	for _, cmd := range []*cobra.Command{planCmd, generateCmd} {
		cmd.Flags().StringP("request", "r", "", "Text request")
		cmd.Flags().String("drive-link", "", "Optional dataset link passed to the planner")
		cmd.Flags().String("input", "", "Image to edit")
		cmd.Flags().StringSlice("face", nil, "Face reference images")
		cmd.Flags().StringSlice("body", nil, "Body reference images")
		cmd.Flags().StringSlice("style", nil, "Style reference images")
		_ = cmd.MarkFlagRequired("request")
	}
	generateCmd.Flags().StringP("out", "o", "director-output.png", "Output file")
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}
	plan, err := a.session.Submit(ctx, req)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(plan); err != nil {
		return err
	}
	return enc.Close()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}
	plan, err := a.session.Submit(ctx, req)
	if err != nil {
		return err
	}
	a.log.Infof("Plan ready: %s", plan.Mode)

	result, err := a.session.Confirm(ctx)
	if err != nil {
		return err
	}
	if !result.HasImage() {
		return fmt.Errorf("%s returned no image: %s", result.Model, result.Text)
	}

	_, data, err := models.ParseDataURL(result.ImageURL)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	suffix := ""
	if result.FellBack {
		suffix = " (fallback)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s with %s%s\n", out, result.Model, suffix)
	return nil
}

func requestFromFlags(cmd *cobra.Command) (session.Request, error) {
	text, _ := cmd.Flags().GetString("request")
	link, _ := cmd.Flags().GetString("drive-link")
	req := session.Request{Text: text, AuxiliaryContext: link}

	var err error
	for _, slot := range []struct {
		flag string
		dst  *[]models.ReferenceImage
	}{
		{"face", &req.Images.Face},
		{"body", &req.Images.Body},
		{"style", &req.Images.Style},
	} {
		paths, _ := cmd.Flags().GetStringSlice(slot.flag)
		if *slot.dst, err = loadImages(paths); err != nil {
			return req, err
		}
	}

	if input, _ := cmd.Flags().GetString("input"); input != "" {
		img, err := loadImage(input)
		if err != nil {
			return req, err
		}
		req.Images.Input = &img
	}
	return req, nil
}

func loadImages(paths []string) ([]models.ReferenceImage, error) {
	images := make([]models.ReferenceImage, 0, len(paths))
	for _, path := range paths {
		img, err := loadImage(path)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func loadImage(path string) (models.ReferenceImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ReferenceImage{}, err
	}
	mtype := mimetype.Detect(data)
	if !mtype.Is("image/png") && !mtype.Is("image/jpeg") && !mtype.Is("image/webp") &&
		!mtype.Is("image/gif") && !mtype.Is("image/heic") && !mtype.Is("image/heif") {
		return models.ReferenceImage{}, fmt.Errorf("%s: not a supported image (%s)", path, mtype.String())
	}
	return models.ReferenceImage{Name: filepath.Base(path), MIMEType: mtype.String(), Data: data}, nil
}
