package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/sant0-9/heartgpt/internal/errs"
	"github.com/sant0-9/heartgpt/internal/present"
)

func handleError(err error) {
	styles := present.StderrStyles()
	format := "\n%s\n\n"

	var merr errs.Error
	if errors.As(err, &merr) {
		args := []any{styles.ErrPadding.Render(styles.ErrorHeader.String(), merr.Reason)}
		if merr.Err != nil && !errors.Is(merr.Err, huh.ErrUserAborted) {
			format += "%s\n\n"
			args = append(args, styles.ErrPadding.Render(styles.ErrorDetails.Render(merr.Err.Error())))
		}
		fmt.Fprintf(os.Stderr, format, args...)
		return
	}

	fmt.Fprintf(os.Stderr, format, styles.ErrPadding.Render(styles.ErrorDetails.Render(err.Error())))
}
