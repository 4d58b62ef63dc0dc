package logger

import "log"

// Init sets logging flags; called once from main.
func Init() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}

func logf(level, format string, v ...any) {
	log.Printf("["+level+"] "+format, v...)
}

func Infof(format string, v ...any)  { logf("INFO", format, v...) }
func Warnf(format string, v ...any)  { logf("WARN", format, v...) }
func Errorf(format string, v ...any) { logf("ERROR", format, v...) }
func Debugf(format string, v ...any) { logf("DEBUG", format, v...) }

func Fatalf(format string, v ...any) {
	log.Fatalf("[FATAL] "+format, v...)
}
