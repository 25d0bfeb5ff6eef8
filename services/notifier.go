package services

// EnrollmentNotifier получает сигнал об изменении состава команд турнира.
// Вызов не должен блокироваться: доставка не гарантируется.
type EnrollmentNotifier interface {
	EmitEnrollmentChanged(tournamentID int)
}

// MultiNotifier рассылает сигнал всем вложенным получателям.
type MultiNotifier []EnrollmentNotifier

func (m MultiNotifier) EmitEnrollmentChanged(tournamentID int) {
	for _, n := range m {
		if n != nil {
			n.EmitEnrollmentChanged(tournamentID)
		}
	}
}

type noopNotifier struct{}

func (noopNotifier) EmitEnrollmentChanged(int) {}
