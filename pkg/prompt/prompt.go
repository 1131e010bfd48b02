// Package prompt asks the user for race fields on a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mpapenbr/racedb/pkg/model"
	"github.com/mpapenbr/racedb/pkg/render"
)

var ErrInputClosed = errors.New("input closed")

type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// CollectFields asks for every field. The current value (taken from
// defaults) is shown in parentheses and kept if the answer is empty.
// Answers which cannot be parsed are asked again.
func (p *Prompter) CollectFields(fields []model.Field, defaults model.Record) (model.Record, error) {
	ret := defaults.Clone()
	for _, f := range fields {
		if _, ok := ret[f.Key]; !ok {
			ret[f.Key] = nil
		}
		for {
			question := f.Prompt
			if cur := render.Value(f.Key, ret[f.Key]); cur != "" {
				question = fmt.Sprintf("%s (%s)", f.Prompt, cur)
			}
			answer, err := p.ask(question)
			if err != nil {
				return nil, err
			}
			if answer == "" {
				break
			}
			v, err := f.Parse(answer)
			if err != nil {
				fmt.Fprintf(p.out, "%v, please try again.\n", err)
				continue
			}
			ret[f.Key] = v
			break
		}
	}
	return ret, nil
}

// Race collects all declared fields until the user confirms the result.
func (p *Prompter) Race(defaults model.Record) (model.Record, error) {
	data := defaults
	if data.IsEmpty() {
		data = model.NewRecord()
	}
	for {
		var err error
		if data, err = p.CollectFields(model.Fields, data); err != nil {
			return nil, err
		}
		if err = render.Race(p.out, data); err != nil {
			return nil, err
		}
		answer, err := p.ask("Does that look ok [Y] or would you like to try again [N]?")
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(answer, "y") {
			return data, nil
		}
	}
}

func (p *Prompter) ask(question string) (string, error) {
	if _, err := fmt.Fprintf(p.out, "%s\n>> ", question); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
