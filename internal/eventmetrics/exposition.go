package eventmetrics

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// ContentType is the media type of the Serialize output.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

var (
	helpEscaper       = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
	labelValueEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, `"`, `\"`)
)

// Serialize writes every registered counter, and any runtime families, to sink.
// Event counters list their labels in declaration order; families are sorted by name.
func (registry *Registry) Serialize(sink io.Writer) error {
	families, gatherErr := registry.gatherer.Gather()
	if gatherErr != nil {
		return fmt.Errorf("eventmetrics.serialize.gather: %w", gatherErr)
	}

	familiesByName := make(map[string]*dto.MetricFamily, len(families))
	names := make([]string, 0, len(families)+len(registry.counters))
	for _, family := range families {
		familiesByName[family.GetName()] = family
		names = append(names, family.GetName())
	}
	for name := range registry.counters {
		if _, gathered := familiesByName[name]; !gathered {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	writer := bufio.NewWriter(sink)
	for _, name := range names {
		if counter, declared := registry.counters[name]; declared {
			writeCounterFamily(writer, counter, familiesByName[name])
			continue
		}
		if _, err := expfmt.MetricFamilyToText(writer, familiesByName[name]); err != nil {
			return fmt.Errorf("eventmetrics.serialize.%s: %w", name, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("eventmetrics.serialize.flush: %w", err)
	}
	return nil
}

// writeCounterFamily relies on the bufio.Writer keeping the first write error for Flush.
func writeCounterFamily(writer *bufio.Writer, counter *Counter, family *dto.MetricFamily) {
	writer.WriteString("# HELP ")
	writer.WriteString(counter.name)
	writer.WriteByte(' ')
	writer.WriteString(helpEscaper.Replace(counter.help))
	writer.WriteString("\n# TYPE ")
	writer.WriteString(counter.name)
	writer.WriteString(" counter\n")
	if family == nil {
		return
	}
	for _, metric := range family.GetMetric() {
		valuesByName := make(map[string]string, len(metric.GetLabel()))
		for _, pair := range metric.GetLabel() {
			valuesByName[pair.GetName()] = pair.GetValue()
		}
		writer.WriteString(counter.name)
		writer.WriteByte('{')
		for _, labelName := range counter.labelNames {
			writer.WriteString(labelName)
			writer.WriteString(`="`)
			writer.WriteString(labelValueEscaper.Replace(valuesByName[labelName]))
			writer.WriteString(`",`)
		}
		writer.WriteString("} ")
		writer.WriteString(strconv.FormatFloat(metric.GetCounter().GetValue(), 'f', -1, 64))
		writer.WriteByte('\n')
	}
}
