package render

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Константы размеров и отступов
const (
	imageWidth      = 1120
	imageHeight     = 680
	headerHeight    = 60
	leftLabelsWidth = 60
	dayPaddingX     = 6
	minSlotHeight   = 8.0
	totalDaysInWeek = 7
	minHour         = 7
	maxHour         = 22
)

// Цветовая схема
var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{224, 224, 224, 255}
	slotFreeColor  = color.RGBA{133, 193, 85, 220}
	slotHeldColor  = color.RGBA{255, 206, 84, 230}
	slotBookColor  = color.RGBA{255, 182, 193, 255}
	slotTextColor  = color.RGBA{20, 24, 28, 230}
	dayLabelFormat = "Mon 02.01"
)

// WeekImage рисует недельный календарь слотов репетитора и возвращает PNG.
// weekStart - понедельник отображаемой недели.
func WeekImage(weekStart time.Time, slots []*model.Slot) ([]byte, error) {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(bgColor)
	dc.Clear()

	dayWidth := float64(imageWidth-leftLabelsWidth) / totalDaysInWeek
	gridHeight := float64(imageHeight - headerHeight)
	hourHeight := gridHeight / float64(maxHour-minHour)

	// Фон дней и подписи
	for day := 0; day < totalDaysInWeek; day++ {
		x := float64(leftLabelsWidth) + float64(day)*dayWidth

		if day%2 == 0 {
			dc.SetColor(evenDayColor)
		} else {
			dc.SetColor(oddDayColor)
		}
		dc.DrawRectangle(x, headerHeight, dayWidth, gridHeight)
		dc.Fill()

		dayDate := weekStart.AddDate(0, 0, day)
		dc.SetColor(textColor)
		dc.DrawStringAnchored(dayDate.Format(dayLabelFormat), x+dayWidth/2, headerHeight/2, 0.5, 0.5)
	}

	// Линии и подписи часов
	for hour := minHour; hour <= maxHour; hour++ {
		y := float64(headerHeight) + float64(hour-minHour)*hourHeight

		dc.SetColor(hourLineColor)
		dc.SetLineWidth(0.5)
		dc.DrawLine(leftLabelsWidth, y, imageWidth, y)
		dc.Stroke()

		dc.SetColor(textColor)
		dc.DrawStringAnchored(fmt.Sprintf("%02d:00", hour), leftLabelsWidth/2, y, 0.5, 0.5)
	}

	// Слоты
	for _, slot := range slots {
		day := int(slot.StartTime.Sub(weekStart).Hours() / 24)
		if day < 0 || day >= totalDaysInWeek {
			continue
		}

		startY := hourOffset(slot.StartTime, hourHeight)
		endY := hourOffset(slot.EndTime, hourHeight)
		height := endY - startY
		if height < minSlotHeight {
			height = minSlotHeight
		}

		x := float64(leftLabelsWidth) + float64(day)*dayWidth + dayPaddingX
		y := float64(headerHeight) + startY

		dc.SetColor(slotColor(slot.State))
		dc.DrawRoundedRectangle(x, y, dayWidth-2*dayPaddingX, height, 4)
		dc.Fill()

		label := fmt.Sprintf("%s-%s", slot.StartTime.Format("15:04"), slot.EndTime.Format("15:04"))
		dc.SetColor(slotTextColor)
		dc.DrawStringAnchored(label, x+(dayWidth-2*dayPaddingX)/2, y+height/2, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode week image: %w", err)
	}

	return buf.Bytes(), nil
}

func hourOffset(t time.Time, hourHeight float64) float64 {
	hours := float64(t.Hour()-minHour) + float64(t.Minute())/60
	if hours < 0 {
		hours = 0
	}
	if hours > maxHour-minHour {
		hours = maxHour - minHour
	}
	return hours * hourHeight
}

func slotColor(state model.SlotState) color.Color {
	switch state {
	case model.SlotStateFree:
		return slotFreeColor
	case model.SlotStateHeld:
		return slotHeldColor
	case model.SlotStateBooked:
		return slotBookColor
	default:
		return slotFreeColor
	}
}
