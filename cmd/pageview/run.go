package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageview/pageview/internal/book"
	"github.com/pageview/pageview/internal/config"
	"github.com/pageview/pageview/internal/util"
)

func NewRunCommand() *cobra.Command {
	var (
		page  int
		ahead int
	)

	cmd := &cobra.Command{
		Use:   "run <folder>",
		Short: "Load one page, its neighbours and every thumbnail, then exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBook(ctx, loadConfiguration(), args[0], page, ahead)
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "index of the page on screen")
	cmd.Flags().IntVar(&ahead, "ahead", 4, "pages to preload after the one on screen")
	return cmd
}

func runBook(ctx context.Context, cfg *config.Configuration, folder string, page, ahead int) (err error) {
	a, err := newApp(ctx, cfg, folder)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if a.book.Len() == 0 {
		color.Yellow("no images found in %s", folder)
		return nil
	}
	page = util.Clamp(page, 0, a.book.Len()-1)

	view := toPages(a.book.Pages[page : page+1])
	next := toPages(a.book.Ahead(page, ahead))
	all := a.pages()

	if _, err := a.content.RequestView(view); err != nil {
		return err
	}
	if _, err := a.content.RequestAhead(next); err != nil {
		return err
	}
	if _, err := a.thumbnails.Request(all); err != nil {
		return err
	}

	waitErr := a.content.Wait(ctx, append(view, next...), cfg.Engine.WaitTimeout)
	if waitErr == nil {
		waitErr = a.thumbnails.Wait(ctx, all, cfg.Engine.WaitTimeout)
	}
	if waitErr != nil {
		zap.S().Named("run").Warnw("stopped waiting", "error", waitErr)
	}

	printSummary(a.book, page)
	return nil
}

func printSummary(b *book.Book, current int) {
	bold := color.New(color.Bold)
	loaded := color.New(color.FgGreen)
	missing := color.New(color.FgYellow)

	_, _ = bold.Printf("%s (%d pages)\n", b.Folder, b.Len())
	for _, p := range b.Pages {
		marker := " "
		if p.Index() == current {
			marker = ">"
		}

		content := missing.Sprint("-")
		if c := p.Content(); c != nil {
			content = loaded.Sprintf("%s %dx%d %dKB", c.Format, c.Width, c.Height, util.ConvertBytesToKB(c.Size))
		}
		thumb := missing.Sprint("-")
		if t := p.Thumbnail(); t != nil {
			thumb = loaded.Sprintf("%dx%d", t.Width, t.Height)
		}

		fmt.Printf("%s %4d  %-32s  content: %s  thumbnail: %s\n", marker, p.Index(), p.ID(), content, thumb)
	}
}
